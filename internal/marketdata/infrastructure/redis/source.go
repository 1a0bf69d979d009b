// Package redis decorates a quote source with a short-TTL Redis cache.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/stocktrading/internal/marketdata/domain"
	"github.com/wyfcoding/stocktrading/pkg/cache"
	"github.com/wyfcoding/stocktrading/pkg/logger"
)

// CachingSource serves quotes from Redis, falling through to the underlying
// source on a miss. Cache failures never fail the lookup; the source is
// always authoritative.
type CachingSource struct {
	source domain.QuoteSource
	cache  *cache.RedisCache
	ttl    time.Duration
}

// NewCachingSource wraps source with a cache of the given TTL.
func NewCachingSource(source domain.QuoteSource, c *cache.RedisCache, ttl time.Duration) *CachingSource {
	return &CachingSource{source: source, cache: c, ttl: ttl}
}

func quoteKey(symbol string) string {
	return "quote:" + symbol
}

// GetQuote returns the cached quote when fresh, otherwise fetches and caches.
func (s *CachingSource) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	var cached domain.Quote
	err := s.cache.GetJSON(ctx, quoteKey(symbol), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.Warn(ctx, "quote cache read failed", "symbol", symbol, "error", err)
	}

	quote, err := s.source.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, quoteKey(symbol), quote, s.ttl); err != nil {
		logger.Warn(ctx, "quote cache write failed", "symbol", symbol, "error", err)
	}
	return quote, nil
}
