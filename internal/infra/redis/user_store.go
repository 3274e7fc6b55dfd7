package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"gameshow-service/internal/domain"
)

// UserStore keeps one hash per account: HSET user:{username} username/password.
type UserStore struct {
	client *redis.Client
}

func NewUserStore(client *redis.Client) *UserStore {
	return &UserStore{client: client}
}

func (s *UserStore) AddUser(ctx context.Context, user domain.User) error {
	err := s.client.HSet(ctx, s.key(user.Username),
		"username", user.Username,
		"password", user.PasswordHash,
	).Err()
	if err != nil {
		return fmt.Errorf("add user: %w", err)
	}
	return nil
}

func (s *UserStore) GetUser(ctx context.Context, username string) (domain.User, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.key(username)).Result()
	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user: %w", err)
	}
	if len(fields) == 0 {
		return domain.User{}, false, nil
	}
	return domain.User{
		Username:     fields["username"],
		PasswordHash: fields["password"],
	}, true, nil
}

func (s *UserStore) key(username string) string {
	return "user:" + username
}
