package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/vision-api/internal/httputil"
	"github.com/redmonkez12/vision-api/internal/logging"
)

const bearerPrefix = "Bearer "

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const IdentityContextKey ContextKey = "identity"

// Middleware is the authorization gate for protected routes.
// It trusts the token's claims and never consults the user store.
type Middleware struct {
	tokenService TokenService
}

func NewMiddleware(tokenService TokenService) *Middleware {
	return &Middleware{tokenService: tokenService}
}

// Authenticate resolves a raw Authorization header value to token claims.
func (m *Middleware) Authenticate(authHeader string) (*Claims, error) {
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return nil, ErrMissingAuth
	}

	return m.tokenService.VerifyToken(authHeader[len(bearerPrefix):])
}

// RequireAuth is a middleware that validates the bearer token
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			logging.GetLoggerFromContext(r.Context()).Debug("authentication rejected", "error", err.Error())

			switch {
			case errors.Is(err, ErrMissingAuth):
				httputil.RespondErrorWithCode(w, "Unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
			case errors.Is(err, ErrExpiredToken):
				httputil.RespondErrorWithCode(w, "Invalid token", httputil.CodeTokenExpired, http.StatusUnauthorized)
			default:
				httputil.RespondErrorWithCode(w, "Invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			}
			return
		}

		ctx := ContextWithIdentity(r.Context(), claims.Identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContextWithIdentity returns a copy of ctx carrying identity
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// IdentityFromContext extracts the authenticated identity from the request context
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(Identity)
	return identity, ok
}
