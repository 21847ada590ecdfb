package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/V4T54L/causeway/internal/domain"
)

const APIKeyHeader = "X-API-Key"

// apiKey reads the key from X-API-Key, falling back to a bearer token.
func apiKey(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}

// Auth is a middleware factory that rejects requests without a valid API
// key.
func Auth(repo domain.APIKeyRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := apiKey(r)
			if key == "" {
				logger.Warn("API key missing from request", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
				http.Error(w, "Unauthorized: API key required", http.StatusUnauthorized)
				return
			}

			ok, err := repo.IsValid(r.Context(), key)
			if err != nil {
				logger.Error("failed to validate API key", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if !ok {
				logger.Warn("invalid API key provided", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
				http.Error(w, "Unauthorized: Invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
