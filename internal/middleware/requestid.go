package middleware

import (
	"context"
	"net/http"

	"classifieds-api/pkg/uid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// RequestIDKey is the context key for the request id.
const RequestIDKey contextKey = "request_id"

// requestIDHeader carries the id in and out; callers may supply their own.
const requestIDHeader = "X-Request-ID"

// RequestID tags each request with an id and echoes it on the response.
// Generated ids use the short form to keep log lines compact.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = "req-" + uid.Short()
		}

		w.Header().Set(requestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request id from context, or "" outside the
// middleware chain.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
