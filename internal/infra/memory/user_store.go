package memory

import (
	"context"
	"errors"
	"sync"

	"gameshow-service/internal/domain"
)

var errUserStoreFailing = errors.New("user store failing")

// UserStore is an in-memory account registry.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
	fail  bool
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

// NewFailingUserStore returns a store whose every operation fails.
func NewFailingUserStore() *UserStore {
	s := NewUserStore()
	s.fail = true
	return s
}

func (s *UserStore) AddUser(_ context.Context, user domain.User) error {
	if s.fail {
		return errUserStoreFailing
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = user
	return nil
}

func (s *UserStore) GetUser(_ context.Context, username string) (domain.User, bool, error) {
	if s.fail {
		return domain.User{}, false, errUserStoreFailing
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	return user, ok, nil
}
