package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/redmonkez12/vision-api/internal/config"
)

var (
	// ErrUnauthenticated is the parent of every error that maps to 401.
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrMissingAuth  = fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrExpiredToken = fmt.Errorf("%w: token has expired", ErrUnauthenticated)

	ErrMissingSecret = errors.New("signing secret is required")
	ErrInvalidExpiry = errors.New("token expiry must be positive")
)

// Identity is what a verified token vouches for.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Claims represents the claims carried by an identity token
type Claims struct {
	Identity
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for token creation and validation.
// Implementations are JWTService (HS256) and PasetoService (PASETO v4.local).
type TokenService interface {
	GenerateToken(identity Identity) (string, error)
	VerifyToken(tokenStr string) (*Claims, error)
}

type options struct {
	now func() time.Time
}

// Option customizes a token service.
type Option func(*options)

// WithClock replaces time.Now for issuing and verifying tokens.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func validateAuthConfig(cfg *config.AuthConfig) error {
	if cfg == nil || len(cfg.SigningSecret) == 0 {
		return ErrMissingSecret
	}
	if cfg.TokenExpiry <= 0 {
		return ErrInvalidExpiry
	}
	return nil
}

// NewTokenService picks the token implementation named by cfg.TokenFormat.
func NewTokenService(cfg *config.AuthConfig, opts ...Option) (TokenService, error) {
	if cfg == nil {
		return nil, ErrMissingSecret
	}

	switch cfg.TokenFormat {
	case "", config.TokenFormatJWT:
		return NewJWTService(cfg, opts...)
	case config.TokenFormatPaseto:
		return NewPasetoService(cfg, opts...)
	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnknownTokenFormat, cfg.TokenFormat)
	}
}
