package auth

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"aidanwoods.dev/go-paseto"
	"golang.org/x/crypto/hkdf"

	"github.com/redmonkez12/vision-api/internal/config"
)

const pasetoKeyInfo = "vision-api paseto v4.local"

// PasetoService handles PASETO token creation and validation
// Uses v4.local (symmetric encryption with XChaCha20-Poly1305)
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
	expiry       time.Duration
	now          func() time.Time
}

// NewPasetoService derives the 32-byte v4.local key from the configured
// secret with HKDF-SHA256, so secrets of any length are accepted.
func NewPasetoService(cfg *config.AuthConfig, opts ...Option) (*PasetoService, error) {
	if err := validateAuthConfig(cfg); err != nil {
		return nil, err
	}

	raw := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, cfg.SigningSecret, nil, []byte(pasetoKeyInfo)), raw); err != nil {
		return nil, fmt.Errorf("failed to derive symmetric key: %w", err)
	}

	key, err := paseto.V4SymmetricKeyFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	o := applyOptions(opts)

	return &PasetoService{
		symmetricKey: key,
		expiry:       cfg.TokenExpiry,
		now:          o.now,
	}, nil
}

// GenerateToken generates a new PASETO v4.local token for identity
func (s *PasetoService) GenerateToken(identity Identity) (string, error) {
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(s.expiry))
	token.SetSubject(identity.UserID)
	token.SetString("userId", identity.UserID)
	token.SetString("email", identity.Email)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken decrypts a PASETO v4.local token and returns the claims.
// Expiry is checked against the service clock rather than the parser's.
func (s *PasetoService) VerifyToken(tokenStr string) (*Claims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := token.GetString("userId")
	if err != nil || userID == "" {
		return nil, ErrInvalidToken
	}

	email, err := token.GetString("email")
	if err != nil {
		return nil, ErrInvalidToken
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !s.now().Before(expiresAt) {
		return nil, ErrExpiredToken
	}

	return &Claims{
		Identity:  Identity{UserID: userID, Email: email},
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
