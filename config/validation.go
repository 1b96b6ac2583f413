package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	var errs ValidationErrors

	switch cfg.DBDriver {
	case DriverPostgres:
		for _, f := range []struct{ field, value string }{
			{"DB_HOST", cfg.DBHost},
			{"DB_PORT", cfg.DBPort},
			{"DB_NAME", cfg.DBName},
			{"DB_USER", cfg.DBUser},
		} {
			if f.value == "" {
				errs = append(errs, ValidationError{Field: f.field, Message: "is required for the postgres driver"})
			}
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{Field: "SQLITE_PATH", Message: "is required for the sqlite driver"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.LLMAPIURL == "" {
		errs = append(errs, ValidationError{Field: "LLM_API_URL", Message: "is required"})
	}
	if cfg.LLMTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "LLM_TIMEOUT", Message: "must be positive"})
	}
	if cfg.CandidateLimit <= 0 {
		errs = append(errs, ValidationError{Field: "CANDIDATE_LIMIT", Message: "must be positive"})
	}
	if cfg.StoreTimeout < 0 {
		errs = append(errs, ValidationError{Field: "STORE_TIMEOUT", Message: "must not be negative"})
	}
	if cfg.KeywordCacheTTL < 0 {
		errs = append(errs, ValidationError{Field: "KEYWORD_CACHE_TTL", Message: "must not be negative"})
	}

	// Sensitive values are mandatory outside local development
	if env == Production || env == CI {
		if cfg.LLMAPIKey == "" {
			errs = append(errs, ValidationError{Field: "LLM_API_KEY", Message: "llm_api_key secret is required"})
		}
		if cfg.AdminJWTSecret == "" {
			errs = append(errs, ValidationError{Field: "ADMIN_JWT_SECRET", Message: "admin_jwt_secret secret is required"})
		}
		if cfg.DBDriver == DriverPostgres && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{Field: "DB_PASSWORD", Message: "db_password secret is required"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
