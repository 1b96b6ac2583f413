package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the configured browser origins to call the API
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	switch {
	case len(origins) == 0:
		cfg.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	case slices.Contains(origins, "*"):
		// browsers reject credentials with a wildcard origin
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	default:
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
