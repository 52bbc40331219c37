package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohamedkhairy/stock-advisor/internal/cache"
	"github.com/mohamedkhairy/stock-advisor/internal/models"
	"github.com/mohamedkhairy/stock-advisor/pkg/logger"
)

// CachedSource wraps a Source with a TTL cache. Cache failures are logged
// and fall through to the wrapped source.
type CachedSource struct {
	inner Source
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedSource creates a caching wrapper around inner
func NewCachedSource(inner Source, c cache.Cache, ttl time.Duration) *CachedSource {
	return &CachedSource{inner: inner, cache: c, ttl: ttl}
}

func (c *CachedSource) Name() string { return c.inner.Name() }

func (c *CachedSource) FetchSeries(ctx context.Context, symbol, period, interval string) (*models.PriceSeries, error) {
	key := fmt.Sprintf("series:%s:%s:%s:%s", c.inner.Name(), strings.ToUpper(symbol), period, interval)

	var cached models.PriceSeries
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	series, err := c.inner.FetchSeries(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, series)
	return series, nil
}

func (c *CachedSource) FetchFundamentals(ctx context.Context, symbol string) (models.FundamentalSet, error) {
	key := fmt.Sprintf("fundamentals:%s:%s", c.inner.Name(), strings.ToUpper(symbol))

	var cached models.FundamentalSet
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	f, err := c.inner.FetchFundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, f)
	return f, nil
}

// Search delegates to the wrapped source when it supports search
func (c *CachedSource) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	s, ok := c.inner.(Searcher)
	if !ok {
		return nil, ErrSearchUnsupported
	}
	return s.Search(ctx, query, limit)
}

func (c *CachedSource) load(ctx context.Context, key string, out interface{}) bool {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			logger.Warn("Cache read failed",
				logger.String("key", key),
				logger.ErrorField(err),
			)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logger.Warn("Discarding undecodable cache entry",
			logger.String("key", key),
			logger.ErrorField(err),
		)
		return false
	}
	return true
}

func (c *CachedSource) store(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn("Failed to encode cache entry", logger.String("key", key), logger.ErrorField(err))
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		logger.Warn("Cache write failed", logger.String("key", key), logger.ErrorField(err))
	}
}
