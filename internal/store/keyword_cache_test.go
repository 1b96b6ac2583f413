package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/proteinpick/backend/internal/model"
	"github.com/pageza/proteinpick/backend/internal/observability"
	th "github.com/pageza/proteinpick/backend/internal/testhelpers"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("Skipping Redis-dependent test - REDIS_HOST not set")
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	client := redis.NewClient(&redis.Options{Addr: host + ":" + port})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() {
		client.Del(context.Background(), keywordCacheKey)
		_ = client.Close()
	})
	return client
}

func TestCachedKeywords_ReadThrough(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	require.NoError(t, client.Del(ctx, keywordCacheKey).Err())

	source := &th.MockKeywordCatalog{}
	source.On("ListTasteKeywords", mock.Anything).Return([]model.TasteKeyword{
		{ID: "chocolate", Label: "초코", SortOrder: 1},
	}, nil).Once()

	cache := NewCachedKeywords(source, client, time.Minute, observability.Nop())

	first, err := cache.ListTasteKeywords(ctx)
	require.NoError(t, err)
	second, err := cache.ListTasteKeywords(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	source.AssertNumberOfCalls(t, "ListTasteKeywords", 1)
}

func TestCachedKeywords_Invalidate(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	require.NoError(t, client.Del(ctx, keywordCacheKey).Err())

	source := &th.MockKeywordCatalog{}
	source.On("ListTasteKeywords", mock.Anything).Return([]model.TasteKeyword{{ID: "vanilla", Label: "바닐라"}}, nil)

	cache := NewCachedKeywords(source, client, time.Minute, observability.Nop())
	_, err := cache.ListTasteKeywords(ctx)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(ctx))
	_, err = cache.ListTasteKeywords(ctx)
	require.NoError(t, err)

	source.AssertNumberOfCalls(t, "ListTasteKeywords", 2)
}

func TestCachedKeywords_SourceErrorIsReturned(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	require.NoError(t, client.Del(ctx, keywordCacheKey).Err())

	source := &th.MockKeywordCatalog{}
	source.On("ListTasteKeywords", mock.Anything).Return(nil, errors.New("db down"))

	cache := NewCachedKeywords(source, client, time.Minute, observability.Nop())
	_, err := cache.ListTasteKeywords(ctx)
	assert.EqualError(t, err, "db down")
}

func TestCachedKeywords_RedisDownFallsBackToSource(t *testing.T) {
	// nothing listens on this port
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	source := &th.MockKeywordCatalog{}
	source.On("ListTasteKeywords", mock.Anything).Return([]model.TasteKeyword{{ID: "banana", Label: "바나나"}}, nil)

	cache := NewCachedKeywords(source, client, time.Minute, observability.Nop())
	got, err := cache.ListTasteKeywords(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "banana", got[0].ID)
}
