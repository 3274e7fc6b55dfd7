package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gameshow-service/internal/domain"
)

// GameLoader loads the configured game's JSONB from Postgres.
type GameLoader struct {
	pool   *pgxpool.Pool
	gameID string
}

func NewGameLoader(pool *pgxpool.Pool, gameID string) *GameLoader {
	return &GameLoader{pool: pool, gameID: gameID}
}

func (l *GameLoader) LoadGame(ctx context.Context) (domain.Game, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM games WHERE id=$1`, l.gameID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("load game: %w", err)
	}
	var game domain.Game
	if err := json.Unmarshal(raw, &game); err != nil {
		return domain.Game{}, fmt.Errorf("unmarshal game: %w", err)
	}
	return game, nil
}
