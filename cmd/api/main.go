package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pageza/proteinpick/backend/config"
	"github.com/pageza/proteinpick/backend/internal/api"
	"github.com/pageza/proteinpick/backend/internal/database"
	"github.com/pageza/proteinpick/backend/internal/middleware"
	"github.com/pageza/proteinpick/backend/internal/observability"
	"github.com/pageza/proteinpick/backend/internal/router"
	"github.com/pageza/proteinpick/backend/internal/server"
	"github.com/pageza/proteinpick/backend/internal/service"
	"github.com/pageza/proteinpick/backend/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		// logger settings come from config, so fall back to defaults here
		log := observability.NewLogger(observability.LogConfig{ServiceName: "proteinpick-api"})
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := observability.NewLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "proteinpick-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	if cfg.DBDriver == config.DriverSQLite {
		if err := database.RunMigrations(ctx, db, migrationsDir(), log); err != nil {
			return err
		}
	}

	// Redis is optional: without it there is no keyword cache and no rate limit
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg, log)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, continuing without cache and rate limiting")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	flavors := store.NewFlavorStore(db)

	var keywords service.KeywordCatalog = flavors
	admin := api.NewAdminHandler(nil)
	if redisClient != nil && cfg.KeywordCacheTTL > 0 {
		cached := store.NewCachedKeywords(flavors, redisClient, cfg.KeywordCacheTTL, log)
		keywords = cached
		admin = api.NewAdminHandler(cached)
	}

	images, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return err
	}
	var resolver service.ImageResolver
	if images != nil {
		resolver = images
	}

	recommender := service.NewRecommender(
		service.NewChatClient(cfg, log),
		flavors,
		keywords,
		resolver,
		cfg.CandidateLimit,
		log,
	).WithStoreTimeout(cfg.StoreTimeout)

	var limiter *middleware.RateLimiter
	if redisClient != nil && cfg.RateLimitPerHour > 0 {
		limiter = middleware.NewRecommendRateLimiter(redisClient, cfg.RateLimitPerHour)
	}

	engine := router.SetupRouter(router.Handlers{
		Recommend:     api.NewRecommendHandler(recommender),
		TasteKeywords: api.NewTasteKeywordHandler(keywords),
		Admin:         admin,
	}, router.Options{
		Log:         log,
		CORSOrigins: cfg.CORSAllowedOrigins,
		RateLimiter: limiter,
		AdminTokens: middleware.NewAdminTokens(cfg.AdminJWTSecret),
	})

	return server.New(cfg.ServerHost, cfg.ServerPort, engine, log).Run(ctx)
}

func migrationsDir() string {
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	return "migrations"
}
