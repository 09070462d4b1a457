package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSHandler returns a configured CORS handler for Chi
func CORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Request-Seq"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID", "X-Data-Source", "X-Data-Degraded", "X-Export-URL"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
