package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort         string
	ServerHost         string
	CORSAllowedOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// LLM chat-completion endpoint
	LLMAPIURL  string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// Recommendation pipeline. StoreTimeout bounds each catalog read and
	// candidate query; zero leaves them on the request context.
	CandidateLimit   int
	StoreTimeout     time.Duration
	KeywordCacheTTL  time.Duration
	RateLimitPerHour int

	// Admin JWT secret guarding catalog maintenance routes
	AdminJWTSecret string

	// Object storage for product images
	S3BucketName string
	AWSRegion    string

	LogLevel  string
	LogFormat string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	// .env is a convenience for local runs; it never overrides the real environment
	if env == Development || env == Test {
		_ = godotenv.Load()
	}

	cfg := &Config{}
	switch env {
	case CI:
		loadFromEnv(cfg, false)
	case Development, Test, Production:
		loadFromEnv(cfg, true)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromEnv fills cfg from environment variables, falling back to Docker
// secrets for sensitive values when useSecrets is set.
func loadFromEnv(cfg *Config, useSecrets bool) {
	secret := func(name string) string {
		if v := os.Getenv(name); v != "" {
			return v
		}
		if path := os.Getenv(name + "_FILE"); path != "" {
			if data, err := os.ReadFile(path); err == nil {
				return strings.TrimSpace(string(data))
			}
		}
		if useSecrets {
			return readSecret(strings.ToLower(name))
		}
		return ""
	}

	cfg.ServerPort = getEnv("SERVER_PORT", "8080")
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", DriverPostgres))
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBUser = secret("DB_USER")
	if cfg.DBUser == "" {
		cfg.DBUser = "postgres"
	}
	cfg.DBPassword = secret("DB_PASSWORD")
	cfg.DBName = getEnv("DB_NAME", "proteinpick")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "proteinpick.db")

	cfg.RedisURL = secret("REDIS_URL")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")
	cfg.RedisPassword = secret("REDIS_PASSWORD")
	cfg.RedisDB = getInt("REDIS_DB", 0)

	cfg.LLMAPIURL = getEnv("LLM_API_URL", "https://api.deepseek.com/v1/chat/completions")
	cfg.LLMAPIKey = secret("LLM_API_KEY")
	cfg.LLMModel = getEnv("LLM_MODEL", "deepseek-chat")
	cfg.LLMTimeout = getDuration("LLM_TIMEOUT", 30*time.Second)

	cfg.CandidateLimit = getInt("CANDIDATE_LIMIT", 200)
	cfg.StoreTimeout = getDuration("STORE_TIMEOUT", 5*time.Second)
	cfg.KeywordCacheTTL = getDuration("KEYWORD_CACHE_TTL", 0)
	cfg.RateLimitPerHour = getInt("RATE_LIMIT_PER_HOUR", 120)

	cfg.AdminJWTSecret = secret("ADMIN_JWT_SECRET")

	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.AWSRegion = os.Getenv("AWS_REGION")

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	defaultFormat := "json"
	if IsDevelopment() {
		defaultFormat = "console"
	}
	cfg.LogFormat = getEnv("LOG_FORMAT", defaultFormat)
}

// RedisEnabled reports whether a Redis endpoint was configured at all.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

// getDuration accepts Go duration strings ("45s") or a bare number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
