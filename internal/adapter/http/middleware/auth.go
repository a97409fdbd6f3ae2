package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// ActorContextKey is the context key for the authenticated user ID
	ActorContextKey ContextKey = "actor"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// token's user ID in the request context.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid authorization header format")
				return
			}

			claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				message := "invalid token"
				if errors.Is(err, domain.ErrExpiredToken) {
					message = "token has expired"
				}
				writeError(w, http.StatusUnauthorized, "Unauthorized", message)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), claims.UserID)))
		})
	}
}

// WithActor returns a copy of ctx carrying the authenticated user ID.
func WithActor(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ActorContextKey, userID)
}

// ActorFromContext extracts the authenticated user ID from context
func ActorFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ActorContextKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
