package user

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Store is the credential store used by the auth service.
// Emails are matched exactly (case-sensitive).
type Store interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
}

// MemoryStore keeps users in process memory. Everything is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	byEmail map[string]*User
	byID    map[string]*User
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byEmail: make(map[string]*User),
		byID:    make(map[string]*User),
		now:     time.Now,
	}
}

// CreateUser inserts a new user with a fresh ID.
// The email uniqueness check and the insert happen under one lock, so
// concurrent signups for the same email store exactly one user.
func (s *MemoryStore) CreateUser(_ context.Context, name, email, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, ErrDuplicateEmail
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	s.byEmail[email] = u
	s.byID[u.ID] = u

	copied := *u
	return &copied, nil
}

// FindUserByEmail retrieves a user by exact email
func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *u
	return &copied, nil
}

// FindUserByID retrieves a user by ID
func (s *MemoryStore) FindUserByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *u
	return &copied, nil
}

// Count returns the number of stored users
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byID)
}
