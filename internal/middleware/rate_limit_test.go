package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware(t *testing.T) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("Skipping Redis-dependent test - REDIS_HOST not set")
	}
	client := redis.NewClient(&redis.Options{Addr: host + ":6379"})
	defer client.Close()

	prefix := fmt.Sprintf("rate_limit:test:%d", time.Now().UnixNano())
	limiter := NewRateLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 2, KeyPrefix: prefix})

	router := gin.New()
	router.POST("/recommend", limiter.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 3)
	for i := range codes {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/recommend", nil))
		codes[i] = rr.Code
		if i == 0 {
			assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, "1", rr.Header().Get("X-RateLimit-Remaining"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	keys, err := client.Keys(context.Background(), prefix+":*").Result()
	require.NoError(t, err)
	client.Del(context.Background(), keys...)
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	router := gin.New()
	router.POST("/recommend", NewRecommendRateLimiter(client, 1).RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/recommend", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "rate limit check failed", rr.Header().Get("X-RateLimit-Error"))
}
