package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/proteinpick/backend/internal/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorHandler(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(observability.Nop()))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	router.GET("/error", func(c *gin.Context) {
		_ = c.Error(errors.New("db timeout"))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
	})

	t.Run("panic becomes a generic 500", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"Internal Server Error"}`, rr.Body.String())
	})

	t.Run("attached errors are not leaked", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/error", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "db timeout")
	})
}

func TestErrorHandler_LogsFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler gin.HandlerFunc
		want    []string
	}{
		{
			name:    "panic",
			handler: func(c *gin.Context) { panic("boom") },
			want:    []string{`"level":"error"`, `"panic":"boom"`, "recovered from panic"},
		},
		{
			name: "attached error",
			handler: func(c *gin.Context) {
				_ = c.Error(errors.New("db timeout"))
				c.Status(http.StatusInternalServerError)
			},
			want: []string{`"level":"error"`, `"error":"db timeout"`, "request failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			router := gin.New()
			router.Use(ErrorHandler(zerolog.New(&buf)))
			router.GET("/x", tt.handler)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			assert.Contains(t, buf.String(), `"path":"/x"`)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger(observability.Nop()))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, observability.RequestIDFromContext(c.Request.Context()))
	})

	t.Run("generates an id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rr.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, rr.Body.String())
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", rr.Body.String())
	})
}
