package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/redmonkez12/vision-api/internal/config"
)

type jwtClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies HS256 JSON Web Tokens
type JWTService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewJWTService(cfg *config.AuthConfig, opts ...Option) (*JWTService, error) {
	if err := validateAuthConfig(cfg); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	secret := make([]byte, len(cfg.SigningSecret))
	copy(secret, cfg.SigningSecret)

	return &JWTService{
		secret: secret,
		expiry: cfg.TokenExpiry,
		now:    o.now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithStrictDecoding(),
			jwt.WithTimeFunc(o.now),
		),
	}, nil
}

// GenerateToken signs a token for identity that expires after the configured window
func (s *JWTService) GenerateToken(identity Identity) (string, error) {
	now := s.now()

	claims := jwtClaims{
		UserID: identity.UserID,
		Email:  identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken validates signature and expiry and returns the claims
func (s *JWTService) VerifyToken(tokenStr string) (*Claims, error) {
	claims := &jwtClaims{}

	token, err := s.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	result := &Claims{
		Identity:  Identity{UserID: claims.UserID, Email: claims.Email},
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}

	return result, nil
}
