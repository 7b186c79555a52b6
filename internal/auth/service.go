package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/redmonkez12/vision-api/internal/httputil"
	"github.com/redmonkez12/vision-api/internal/logging"
	"github.com/redmonkez12/vision-api/internal/user"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError is a client input problem reported as 400.
type ValidationError struct {
	Message string
	Code    string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

var (
	ErrFieldsRequired      = &ValidationError{Message: "All fields are required", Code: httputil.CodeValidationFailed}
	ErrCredentialsRequired = &ValidationError{Message: "Email and password are required", Code: httputil.CodeValidationFailed}
	ErrInvalidEmailFormat  = &ValidationError{Message: "Invalid email format", Code: httputil.CodeInvalidEmailFormat}

	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
)

const maxEmailLength = 254

// AuthResult is returned by a successful signup or login
type AuthResult struct {
	Token string
	User  *user.User
}

// Service handles authentication business logic
type Service struct {
	users             user.Store
	tokens            TokenService
	hasher            *PasswordHasher
	logger            *logging.Logger
	passwordMinLength int
}

func NewService(
	users user.Store,
	tokens TokenService,
	hasher *PasswordHasher,
	logger *logging.Logger,
	passwordMinLength int,
) *Service {
	return &Service{
		users:             users,
		tokens:            tokens,
		hasher:            hasher,
		logger:            logger,
		passwordMinLength: passwordMinLength,
	}
}

// Signup creates a new user account and issues a token for it
func (s *Service) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || email == "" || password == "" {
		return nil, ErrFieldsRequired
	}
	if len(email) > maxEmailLength {
		return nil, ErrInvalidEmailFormat
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmailFormat
	}
	if utf8.RuneCountInString(password) < s.passwordMinLength {
		return nil, &ValidationError{
			Message: fmt.Sprintf("Password must be at least %d characters", s.passwordMinLength),
			Code:    httputil.CodePasswordTooShort,
		}
	}

	// Cheap pre-check before hashing; CreateUser is the authoritative guard.
	if _, err := s.users.FindUserByEmail(ctx, email); err == nil {
		return nil, user.ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.CreateUser(ctx, name, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("user created", "user_id", newUser.ID)

	token, err := s.tokens.GenerateToken(Identity{UserID: newUser.ID, Email: newUser.Email})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{Token: token, User: newUser}, nil
}

// Login authenticates a user and returns a fresh token
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	existingUser, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(Identity{UserID: existingUser.ID, Email: existingUser.Email})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{Token: token, User: existingUser}, nil
}

// CurrentUser loads the user behind a verified identity.
// Returns user.ErrNotFound if the account no longer exists.
func (s *Service) CurrentUser(ctx context.Context, identity Identity) (*user.User, error) {
	u, err := s.users.FindUserByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}
