package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkwell/inkwell-go/internal/crypto"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenVerifier validates a token string and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*crypto.Claims, error)
}

// JWTAuth returns middleware that validates a Bearer token from the
// Authorization header. Expired tokens get their own message; any other
// verification failure is reported uniformly.
func JWTAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				switch {
				case errors.Is(err, crypto.ErrSecretMissing):
					slog.Error("token verification failed: signing secret not configured")
					writeJSONError(w, http.StatusInternalServerError, "internal server error")
				case errors.Is(err, crypto.ErrTokenExpired):
					writeJSONError(w, http.StatusUnauthorized, "token expired")
				default:
					writeJSONError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// WithUserID returns a context carrying the given user ID. Intended for
// handler tests that bypass the middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
