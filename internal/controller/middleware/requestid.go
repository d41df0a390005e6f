package middleware

import (
	"net/http"

	"storeplane/internal/logger"

	"github.com/google/uuid"
)

// RequestID attaches a request-scoped id to the request context (retrieved
// downstream via logger.FromContext) and echoes it back as the
// X-Request-Id response header. An incoming X-Request-Id is honored as-is
// so a caller's own correlation id survives the hop.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}
