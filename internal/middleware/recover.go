package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
	"github.com/recaudopro/recaudo-api/internal/pkg/response"
)

// Recover turns panics into 500 responses.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.FromContext(r.Context()).Error().
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("Panic recovered")
				response.InternalError(w)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
