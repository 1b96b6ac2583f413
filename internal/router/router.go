package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pageza/proteinpick/backend/internal/api"
	"github.com/pageza/proteinpick/backend/internal/middleware"
)

// Handlers are the route handlers served by the router.
type Handlers struct {
	Recommend     *api.RecommendHandler
	TasteKeywords *api.TasteKeywordHandler
	Admin         *api.AdminHandler
}

// Options configures the middleware stack.
type Options struct {
	Log         zerolog.Logger
	CORSOrigins []string
	// RateLimiter guards the recommend route; nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
	AdminTokens middleware.TokenValidator
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestLogger(opts.Log))
	router.Use(middleware.ErrorHandler(opts.Log))
	router.Use(middleware.CORS(opts.CORSOrigins))

	router.GET("/health", api.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	recommend := []gin.HandlerFunc{h.Recommend.Recommend}
	if opts.RateLimiter != nil {
		recommend = append([]gin.HandlerFunc{opts.RateLimiter.RateLimitMiddleware()}, recommend...)
	}
	v1.POST("/recommend", recommend...)
	v1.GET("/taste-keywords", h.TasteKeywords.List)

	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(opts.AdminTokens))
	{
		admin.POST("/taste-keywords/invalidate", h.Admin.InvalidateKeywords)
	}

	return router
}
