package app

import (
	"context"
	"fmt"

	"gameshow-service/internal/domain"
)

// UserStore persists registered accounts.
type UserStore interface {
	AddUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, username string) (domain.User, bool, error)
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, plain string) bool
}

// TokenCodec issues bearer tokens and verifies them back to a username.
type TokenCodec interface {
	Issue(username string) (string, error)
	Verify(token string) (string, error)
}

// UsersService contains the registration, login, and authorization use cases
// that gate access to the game connection.
type UsersService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenCodec
}

func NewUsersService(users UserStore, hasher PasswordHasher, tokens TokenCodec) *UsersService {
	return &UsersService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates an account and returns a fresh token for it.
func (s *UsersService) Register(ctx context.Context, username, password string) (string, error) {
	_, exists, err := s.users.GetUser(ctx, username)
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}
	if exists {
		return "", domain.ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.AddUser(ctx, domain.User{Username: username, PasswordHash: hash}); err != nil {
		return "", fmt.Errorf("store user: %w", err)
	}
	return s.tokens.Issue(username)
}

// Login verifies credentials and returns a fresh token.
func (s *UsersService) Login(ctx context.Context, username, password string) (string, error) {
	user, exists, err := s.users.GetUser(ctx, username)
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}
	if !exists {
		return "", domain.ErrUserNotFound
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		return "", domain.ErrIncorrectPassword
	}
	return s.tokens.Issue(username)
}

// Authorize validates a bearer token and confirms the account still exists.
// It is the pass/fail gate in front of every game connection.
func (s *UsersService) Authorize(ctx context.Context, token string) (string, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	_, exists, err := s.users.GetUser(ctx, username)
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}
	if !exists {
		return "", domain.ErrUserNotFound
	}
	return username, nil
}
