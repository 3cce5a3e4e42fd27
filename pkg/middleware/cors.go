package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/shashiranjanraj/propelyu/config"
)

// CORS allows the origins listed in CORS_ORIGINS (comma separated, default "*").
func CORS() func(http.Handler) http.Handler {
	origins := strings.Split(config.Get("CORS_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	})
}
