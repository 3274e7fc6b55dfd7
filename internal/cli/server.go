package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gameshow-service/internal/app"
	"gameshow-service/internal/auth"
	"gameshow-service/internal/config"
	"gameshow-service/internal/domain"
	"gameshow-service/internal/infra/memory"
	pgstore "gameshow-service/internal/infra/postgres"
	redisstore "gameshow-service/internal/infra/redis"
	transport "gameshow-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.GameLoader = memory.NewStaticGameLoader(sampleGame())
	if pool != nil {
		gameID := cfg.Game.ID
		if gameID == "" {
			gameID = "game-1"
		}
		loader = pgstore.NewGameLoader(pool, gameID)
	}

	gameTTL := config.Duration(cfg.Game.TTL, 10*time.Minute)
	var games app.GameRepository
	if redisClient != nil {
		games = redisstore.NewGameRepository(redisClient, loader, gameTTL)
	} else {
		games = memory.NewGameRepository(loader, gameTTL)
	}

	var playStore app.PlayStore
	if redisClient != nil {
		playStore = redisstore.NewPlayStore(redisClient, redisTTL)
	} else {
		playStore = memory.NewPlayStore()
	}

	var userStore app.UserStore
	switch {
	case pool != nil:
		userStore = pgstore.NewUserStore(pool)
	case redisClient != nil:
		userStore = redisstore.NewUserStore(redisClient)
	default:
		userStore = memory.NewUserStore()
	}

	clock := clockwork.NewRealClock()

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = "secret"
		log.Warn().Msg("auth secret not configured, using insecure default")
	}
	tokens := auth.NewTokenCodec(secret, config.Duration(cfg.Auth.TokenTTL, 24*time.Hour), clock)
	users := app.NewUsersService(userStore, auth.Hasher{}, tokens)

	notifier := app.NewStartNotifier()
	scheduler := app.NewGameScheduler(notifier, config.Duration(cfg.Game.Interval, 5*time.Minute), clock)

	timings := app.PhaseTimings{
		IntroDelay:   config.Duration(cfg.Game.IntroDelay, 10*time.Second),
		AnswerWindow: config.Duration(cfg.Game.AnswerWindow, 10*time.Second),
		RevealDelay:  config.Duration(cfg.Game.RevealDelay, 10*time.Second),
	}

	wsHandler := transport.NewWSHandler(transport.WSConfig{
		Users:    users,
		Games:    games,
		Store:    playStore,
		Schedule: scheduler,
		Notifier: notifier,
		Timings:  timings,
		Clock:    clock,
	})
	authHandler := transport.NewAuthHandler(users)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/register", authHandler.Register)
	mux.HandleFunc("/login", authHandler.Login)
	mux.HandleFunc("/game", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		err := scheduler.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		log.Info().Str("port", finalPort).Msg("starting game server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(stop)

		select {
		case <-stop:
			log.Info().Msg("shutting down server")
		case <-ctx.Done():
			log.Info().Msg("context canceled, shutting down server")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// sampleGame provides built-in game content for running without Postgres.
func sampleGame() domain.Game {
	return domain.Game{
		ID: "game-1",
		Questions: []domain.Question{
			{
				ID:      "q1",
				Text:    "What is 2 + 2?",
				Options: [4]string{"3", "4", "5", "22"},
				Correct: domain.Second,
			},
			{
				ID:      "q2",
				Text:    "Which planet is known as the Red Planet?",
				Options: [4]string{"Venus", "Jupiter", "Mars", "Saturn"},
				Correct: domain.Third,
			},
			{
				ID:      "q3",
				Text:    "What is the capital of France?",
				Options: [4]string{"Paris", "Lyon", "Marseille", "Nice"},
				Correct: domain.First,
			},
		},
	}
}
