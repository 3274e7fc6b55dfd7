package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"gameshow-service/internal/domain"
)

// GameLoader fetches the active game's content from a backing store (e.g.,
// Postgres).
type GameLoader interface {
	LoadGame(ctx context.Context) (domain.Game, error)
}

// GameRepository caches the active game with a TTL to avoid repeated loader
// hits while every session fetches it at the start of a round.
type GameRepository struct {
	loader GameLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    domain.Game
	expiresAt time.Time
}

func NewGameRepository(loader GameLoader, ttl time.Duration) *GameRepository {
	return &GameRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *GameRepository) GetGame(ctx context.Context) (domain.Game, error) {
	now := r.clock()

	r.mu.RLock()
	if r.expiresAt.After(now) {
		game := r.cached
		r.mu.RUnlock()
		return game, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("game", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.expiresAt.After(now) {
			game := r.cached
			r.mu.RUnlock()
			return game, nil
		}
		r.mu.RUnlock()

		game, err := r.loader.LoadGame(ctx)
		if err != nil {
			return domain.Game{}, err
		}

		r.mu.Lock()
		r.cached = game
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return game, nil
	})
	if err != nil {
		return domain.Game{}, err
	}
	return result.(domain.Game), nil
}

// StaticGameLoader serves a fixed game (useful for tests and demos).
type StaticGameLoader struct {
	game domain.Game
}

func NewStaticGameLoader(game domain.Game) *StaticGameLoader {
	return &StaticGameLoader{game: game}
}

func (l *StaticGameLoader) LoadGame(_ context.Context) (domain.Game, error) {
	return l.game, nil
}

func (r *GameRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
