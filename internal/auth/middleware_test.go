package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/vision-api/internal/config"
	"github.com/redmonkez12/vision-api/internal/httputil"
)

func TestMiddleware_Authenticate(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	tokens, err := NewJWTService(testAuthConfig(config.TokenFormatJWT), WithClock(clock.Now))
	require.NoError(t, err)
	m := NewMiddleware(tokens)

	token, err := tokens.GenerateToken(Identity{UserID: "u-1", Email: "ada@x.com"})
	require.NoError(t, err)

	claims, err := m.Authenticate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"empty header", "", ErrMissingAuth},
		{"basic scheme", "Basic dXNlcjpwYXNz", ErrMissingAuth},
		{"lowercase scheme", "bearer " + token, ErrMissingAuth},
		{"no space", "Bearer" + token, ErrMissingAuth},
		{"raw token", token, ErrMissingAuth},
		{"empty token", "Bearer ", ErrInvalidToken},
		{"garbage token", "Bearer Txyz", ErrInvalidToken},
		{"tampered token", "Bearer " + tamperSignature(token), ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Authenticate(tt.header)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMiddleware_RequireAuth(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	cfg := testAuthConfig(config.TokenFormatJWT)
	tokens, err := NewJWTService(cfg, WithClock(clock.Now))
	require.NoError(t, err)
	m := NewMiddleware(tokens)

	token, err := tokens.GenerateToken(Identity{UserID: "u-1", Email: "ada@x.com"})
	require.NoError(t, err)

	var seen Identity
	var called bool
	protected := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		return rec
	}

	decode := func(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
		t.Helper()
		var body httputil.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		return body
	}

	t.Run("valid token reaches handler", func(t *testing.T) {
		called = false
		rec := serve("Bearer " + token)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, called)
		assert.Equal(t, Identity{UserID: "u-1", Email: "ada@x.com"}, seen)
	})

	t.Run("missing header", func(t *testing.T) {
		called = false
		rec := serve("")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
		body := decode(t, rec)
		assert.False(t, body.Success)
		assert.Equal(t, "Unauthorized", body.Message)
		assert.Equal(t, httputil.CodeMissingAuth, body.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		called = false
		rec := serve("Token " + token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
		assert.Equal(t, "Unauthorized", decode(t, rec).Message)
	})

	t.Run("invalid token", func(t *testing.T) {
		called = false
		rec := serve("Bearer Txyz")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
		body := decode(t, rec)
		assert.Equal(t, "Invalid token", body.Message)
		assert.Equal(t, httputil.CodeInvalidToken, body.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		called = false
		clock.Set(baseTime.Add(cfg.TokenExpiry + time.Minute))
		defer clock.Set(baseTime)

		rec := serve("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
		body := decode(t, rec)
		assert.Equal(t, "Invalid token", body.Message)
		assert.Equal(t, httputil.CodeTokenExpired, body.Code)
	})
}

func TestIdentityFromContext_Missing(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := IdentityFromContext(req.Context())
	assert.False(t, ok)

	ctx := ContextWithIdentity(req.Context(), Identity{UserID: "u-9"})
	identity, ok := IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u-9", identity.UserID)
}
