package middleware

import (
	"context"
	"net/http"
	"strings"

	"classifieds-api/internal/model"
	"classifieds-api/internal/service"
	"classifieds-api/pkg/apierror"
)

// SessionKey is the key for storing session data in request context.
const SessionKey contextKey = "session"

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	TokenService *service.TokenService
}

// NewAuthMiddleware creates a session middleware with injected dependencies.
// The token service is passed via closure, no global state.
func NewAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Token")
			if token == "" {
				auth := r.Header.Get("Authorization")
				if strings.HasPrefix(auth, "Bearer ") {
					token = strings.TrimPrefix(auth, "Bearer ")
				}
			}

			if token == "" {
				writeError(w, apierror.Unauthorized("Authentication required. Use X-Token or Authorization header."))
				return
			}

			session, err := cfg.TokenService.ValidateToken(r.Context(), token)
			if err != nil {
				writeError(w, apierror.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}

// GetSessionFromContext retrieves session data from request context.
func GetSessionFromContext(ctx context.Context) *model.SessionData {
	if data, ok := ctx.Value(SessionKey).(*model.SessionData); ok {
		return data
	}
	return nil
}
