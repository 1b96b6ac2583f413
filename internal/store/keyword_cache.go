package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pageza/proteinpick/backend/internal/model"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

const keywordCacheKey = "proteinpick:taste_keywords"

// KeywordSource reads the taste keyword catalog.
type KeywordSource interface {
	ListTasteKeywords(ctx context.Context) ([]model.TasteKeyword, error)
}

// CachedKeywords is a read-through Redis cache in front of a KeywordSource.
// Redis failures are logged and the source is read directly.
type CachedKeywords struct {
	source KeywordSource
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCachedKeywords wraps source with a Redis cache of the given TTL.
func NewCachedKeywords(source KeywordSource, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedKeywords {
	return &CachedKeywords{source: source, client: client, ttl: ttl, log: log}
}

// ListTasteKeywords returns the cached catalog, loading it on a miss.
func (c *CachedKeywords) ListTasteKeywords(ctx context.Context) ([]model.TasteKeyword, error) {
	keywords, err := c.get(ctx)
	if err == nil {
		return keywords, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.log.Warn().Err(err).Msg("keyword cache read failed")
	}

	keywords, err = c.source.ListTasteKeywords(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.set(ctx, keywords); err != nil {
		c.log.Warn().Err(err).Msg("keyword cache write failed")
	}
	return keywords, nil
}

// Invalidate drops the cached catalog so the next read sees store changes.
func (c *CachedKeywords) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, keywordCacheKey).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (c *CachedKeywords) get(ctx context.Context) ([]model.TasteKeyword, error) {
	data, err := c.client.Get(ctx, keywordCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var keywords []model.TasteKeyword
	if err := json.Unmarshal(data, &keywords); err != nil {
		return nil, fmt.Errorf("failed to decode cached keywords: %w", err)
	}
	return keywords, nil
}

func (c *CachedKeywords) set(ctx context.Context, keywords []model.TasteKeyword) error {
	data, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}
	if err := c.client.Set(ctx, keywordCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
