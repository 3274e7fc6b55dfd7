// Package auth provides the token and password primitives behind the users
// service: an HS256 JWT codec and a bcrypt password hasher.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"gameshow-service/internal/domain"
)

// TokenCodec issues and verifies HS256 bearer tokens with claims
// {sub, iat, exp}. The exp claim carries the validity window length in
// seconds, not an absolute deadline: a token is expired once now > iat+exp.
// The jwt library's standard exp validation assumes an absolute timestamp, so
// it is disabled and the window is checked manually.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewTokenCodec(secret string, ttl time.Duration, clock clockwork.Clock) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl, clock: clock}
}

// Issue signs a token for username valid for the configured window.
func (c *TokenCodec) Issue(username string) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"iat": c.clock.Now().Unix(),
		"exp": int64(c.ttl.Seconds()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks the signature and validity window and returns the subject.
func (c *TokenCodec) Verify(raw string) (string, error) {
	token, err := jwt.Parse(raw,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !token.Valid {
		return "", domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	iat, okIat := numericClaim(claims, "iat")
	exp, okExp := numericClaim(claims, "exp")
	if sub == "" || !okIat || !okExp {
		return "", domain.ErrInvalidToken
	}
	if c.clock.Now().Unix() > iat+exp {
		return "", domain.ErrTokenExpired
	}
	return sub, nil
}

// numericClaim reads a claim that json decoding surfaced as float64.
func numericClaim(claims jwt.MapClaims, key string) (int64, bool) {
	v, ok := claims[key].(float64)
	return int64(v), ok
}
