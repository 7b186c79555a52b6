package user

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.CreateUser(ctx, "Ada", "ada@x.com", "hash")
	require.NoError(t, err)

	_, err = uuid.Parse(created.ID)
	require.NoError(t, err, "id should be a UUID")
	assert.Equal(t, "Ada", created.Name)
	assert.Equal(t, "ada@x.com", created.Email)
	assert.False(t, created.CreatedAt.IsZero())

	byEmail, err := s.FindUserByEmail(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, created, byEmail)

	byID, err := s.FindUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, byID)
}

func TestMemoryStore_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.FindUserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindUserByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.CreateUser(ctx, "Ada", "ada@x.com", "h1")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "Other Ada", "ada@x.com", "h2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, 1, s.Count())
}

func TestMemoryStore_EmailIsCaseSensitive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	upper, err := s.CreateUser(ctx, "Upper", "A@b.com", "h")
	require.NoError(t, err)
	lower, err := s.CreateUser(ctx, "Lower", "a@b.com", "h")
	require.NoError(t, err)

	assert.NotEqual(t, upper.ID, lower.ID)
	assert.Equal(t, 2, s.Count())

	got, err := s.FindUserByEmail(ctx, "A@b.com")
	require.NoError(t, err)
	assert.Equal(t, "Upper", got.Name)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.CreateUser(ctx, "Ada", "ada@x.com", "h")
	require.NoError(t, err)
	created.Name = "Mallory"

	got, err := s.FindUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
}

func TestMemoryStore_ConcurrentCreateSameEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	const workers = 64
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateUser(ctx, "Ada", "ada@x.com", "h")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrDuplicateEmail):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, duplicates)
	assert.Equal(t, 1, s.Count())
}
