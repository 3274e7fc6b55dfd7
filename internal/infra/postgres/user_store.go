package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gameshow-service/internal/domain"
)

// UserStore persists accounts in the users table.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) AddUser(ctx context.Context, user domain.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2)`,
		user.Username, user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("add user: %w", err)
	}
	return nil
}

func (s *UserStore) GetUser(ctx context.Context, username string) (domain.User, bool, error) {
	var user domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT username, password_hash FROM users WHERE username=$1`,
		username,
	).Scan(&user.Username, &user.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return user, true, nil
}
