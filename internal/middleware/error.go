package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/proteinpick/backend/internal/observability"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler recovers panics into a generic JSON 500. Errors attached to the
// context with c.Error are logged; the client only sees the generic message.
func ErrorHandler(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				reqLog := observability.FromContext(c.Request.Context(), log)
				reqLog.Error().
					Interface("panic", err).
					Str("path", c.Request.URL.Path).
					Msg("recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
			}
		}()

		c.Next()

		reqLog := observability.FromContext(c.Request.Context(), log)
		for _, e := range c.Errors {
			reqLog.Error().Err(e.Err).Str("path", c.Request.URL.Path).Msg("request failed")
		}
	}
}
