package domain

import "errors"

var (
	// ErrGameNotFound indicates the active game's content could not be loaded.
	ErrGameNotFound = errors.New("game not found")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("requested username already exists")
	// ErrUserNotFound is returned when logging in to an unknown account.
	ErrUserNotFound = errors.New("requested user was not found")
	// ErrIncorrectPassword is returned on a failed password comparison.
	ErrIncorrectPassword = errors.New("the provided password is incorrect")
	// ErrInvalidToken covers malformed, tampered, or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a token's validity window has passed.
	ErrTokenExpired = errors.New("token expired")
)
