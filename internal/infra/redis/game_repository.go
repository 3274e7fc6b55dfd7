package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"gameshow-service/internal/domain"
)

// GameLoader fetches the active game's content from a backing store (e.g.,
// Postgres).
type GameLoader interface {
	LoadGame(ctx context.Context) (domain.Game, error)
}

const gameKey = "game:active"

// GameRepository caches the active game as a JSON value in Redis and falls
// back to a loader on cache miss.
type GameRepository struct {
	client *redis.Client
	loader GameLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewGameRepository(client *redis.Client, loader GameLoader, ttl time.Duration) *GameRepository {
	return &GameRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *GameRepository) GetGame(ctx context.Context) (domain.Game, error) {
	if game, ok := r.cachedGame(ctx); ok {
		return game, nil
	}

	result, err, _ := r.sf.Do(gameKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if game, ok := r.cachedGame(ctx); ok {
			return game, nil
		}

		game, err := r.loader.LoadGame(ctx)
		if err != nil {
			return domain.Game{}, err
		}

		data, err := json.Marshal(game)
		if err != nil {
			return domain.Game{}, err
		}
		_ = r.client.Set(ctx, gameKey, data, r.ttlWithJitter()).Err()

		return game, nil
	})
	if err != nil {
		return domain.Game{}, err
	}
	return result.(domain.Game), nil
}

func (r *GameRepository) cachedGame(ctx context.Context) (domain.Game, bool) {
	data, err := r.client.Get(ctx, gameKey).Bytes()
	if err != nil {
		return domain.Game{}, false
	}
	var game domain.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return domain.Game{}, false
	}
	return game, true
}

func (r *GameRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
