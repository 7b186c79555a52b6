package auth

import (
	"sync"
	"time"

	"github.com/redmonkez12/vision-api/internal/config"
)

// Whole seconds, since both token formats encode timestamps at second precision.
var baseTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// testPasswordParams keeps argon2 cheap enough for concurrent tests.
var testPasswordParams = PasswordParams{
	Time:    1,
	Memory:  8 * 1024,
	Threads: 1,
	KeyLen:  32,
	SaltLen: 16,
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: baseTime}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func testAuthConfig(format string) *config.AuthConfig {
	return &config.AuthConfig{
		SigningSecret:     []byte("test-secret-do-not-use"),
		TokenExpiry:       7 * 24 * time.Hour,
		TokenFormat:       format,
		PasswordMinLength: 6,
	}
}
