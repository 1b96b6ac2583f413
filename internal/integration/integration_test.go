package integration

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"

	"github.com/pageza/proteinpick/backend/config"
	"github.com/pageza/proteinpick/backend/internal/api"
	"github.com/pageza/proteinpick/backend/internal/middleware"
	"github.com/pageza/proteinpick/backend/internal/observability"
	"github.com/pageza/proteinpick/backend/internal/router"
	"github.com/pageza/proteinpick/backend/internal/service"
	"github.com/pageza/proteinpick/backend/internal/store"
	th "github.com/pageza/proteinpick/backend/internal/testhelpers"
)

const adminSecret = "integration-secret"

type stack struct {
	router *gin.Engine
	tokens *middleware.AdminTokens
}

// newStack wires the production router over db and a fake LLM.
func newStack(t *testing.T, db *gorm.DB, reply th.ChatReply, limiter *middleware.RateLimiter) stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	llm := th.NewFakeLLM(t, reply)
	cfg := &config.Config{
		LLMAPIURL:      llm.URL,
		LLMModel:       "test-model",
		LLMTimeout:     5 * time.Second,
		AdminJWTSecret: adminSecret,
	}

	flavors := store.NewFlavorStore(db)
	recommender := service.NewRecommender(service.NewChatClient(cfg, observability.Nop()), flavors, flavors, nil, 0, observability.Nop())
	tokens := middleware.NewAdminTokens(cfg.AdminJWTSecret)

	return stack{
		router: router.SetupRouter(router.Handlers{
			Recommend:     api.NewRecommendHandler(recommender),
			TasteKeywords: api.NewTasteKeywordHandler(flavors),
			Admin:         api.NewAdminHandler(nil),
		}, router.Options{
			Log:         observability.Nop(),
			RateLimiter: limiter,
			AdminTokens: tokens,
		}),
		tokens: tokens,
	}
}

func (s stack) recommend(t *testing.T, message string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"message":` + quote(message) + `}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// picker extracts nothing and picks the given ids.
func picker(ids ...string) th.ChatReply {
	return func(system, _ string) string {
		if strings.Contains(system, "필터 추출기") {
			return `{"query":null,"mustAsk":null,"filters":{}}`
		}
		var picks []string
		for _, id := range ids {
			picks = append(picks, `{"id":"`+id+`"}`)
		}
		return `{"picks":[` + strings.Join(picks, ",") + `],"followup":null}`
	}
}

// proseOnly never returns JSON, not even when asked to repair.
func proseOnly(system, _ string) string {
	if strings.Contains(system, "필터 추출기") {
		return `{"filters":{}}`
	}
	return "골드 스탠다드 초코를 추천드려요!"
}

func runRecommendFlow(t *testing.T, db *gorm.DB) {
	t.Run("negated taste with milk", func(t *testing.T) {
		s := newStack(t, db, picker(th.FlavorOptimumChocolate), nil)
		w := s.recommend(t, "딸기 말고 초코 추천해줘")
		require.Equal(t, http.StatusOK, w.Code)

		body := gjson.Parse(w.Body.String())
		assert.Equal(t, "ok", body.Get("type").String())
		assert.Equal(t, int64(3), body.Get("candidatesCount").Int())
		assert.Equal(t, th.FlavorOptimumChocolate, body.Get("picks.0.id").String())
		assert.Equal(t, service.LiquidMilk, body.Get("picks.0.best_with").String())
		assert.Equal(t, gjson.Null, body.Get("followup").Type)
	})

	t.Run("protein type and fishy levels", func(t *testing.T) {
		s := newStack(t, db, picker(th.FlavorOptimumVanilla), nil)
		w := s.recommend(t, "WPI 중에 비린맛 없음")
		require.Equal(t, http.StatusOK, w.Code)

		body := gjson.Parse(w.Body.String())
		assert.Equal(t, int64(2), body.Get("candidatesCount").Int())
		assert.Equal(t, th.FlavorOptimumVanilla, body.Get("picks.0.id").String())
	})

	t.Run("unusable LLM falls back to the first candidates", func(t *testing.T) {
		s := newStack(t, db, proseOnly, nil)
		w := s.recommend(t, "초코")
		require.Equal(t, http.StatusOK, w.Code)

		body := gjson.Parse(w.Body.String())
		assert.Equal(t, int64(4), body.Get("candidatesCount").Int())
		assert.Len(t, body.Get("picks").Array(), 3)
		assert.Equal(t, gjson.Null, body.Get("followup").Type)
	})

	t.Run("nothing left after exclusion", func(t *testing.T) {
		s := newStack(t, db, picker(), nil)
		w := s.recommend(t, "바닐라 빼고 단맛은 약하게")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"type":"empty","message":"조건에 맞는 데이터가 아직 없어요."}`, w.Body.String())
	})
}

func TestRecommendFlow_SQLite(t *testing.T) {
	db := th.SetupSQLiteDB(t)
	th.SeedFixture(t, db)
	runRecommendFlow(t, db)
}

func TestRecommendFlow_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	db := th.SetupPostgresDB(t)
	th.SeedFixture(t, db)
	runRecommendFlow(t, db)
}

func TestRequestIDIsPropagated(t *testing.T) {
	db := th.SetupSQLiteDB(t)
	th.SeedFixture(t, db)
	s := newStack(t, db, picker(th.FlavorMyproteinChocolate), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/taste-keywords", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "초코", gjson.Get(w.Body.String(), "taste_keywords.0.label").String())
}

func TestAdminRoutesRequireToken(t *testing.T) {
	db := th.SetupSQLiteDB(t)
	s := newStack(t, db, picker(), nil)

	token, err := s.tokens.Generate("ops", time.Minute)
	require.NoError(t, err)

	for _, auth := range []string{"", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/taste-keywords/invalidate", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/taste-keywords/invalidate", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecommendIsRateLimited(t *testing.T) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("Skipping Redis-dependent test - REDIS_HOST not set")
	}
	client := redis.NewClient(&redis.Options{Addr: host + ":6379"})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })

	limiter := middleware.NewRateLimiter(client, middleware.RateLimitConfig{
		Window:    time.Minute,
		Limit:     2,
		KeyPrefix: "test:" + uuid.NewString(),
	})

	db := th.SetupSQLiteDB(t)
	th.SeedFixture(t, db)
	s := newStack(t, db, picker(th.FlavorMyproteinChocolate), limiter)

	assert.Equal(t, http.StatusOK, s.recommend(t, "초코").Code)
	assert.Equal(t, http.StatusOK, s.recommend(t, "초코").Code)
	assert.Equal(t, http.StatusTooManyRequests, s.recommend(t, "초코").Code)
}
