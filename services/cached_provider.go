package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"kurgan-screener/cache"
	"kurgan-screener/models"
)

// cachedFetch is the JSON envelope stored per ticker so a cached advisory
// survives alongside its partial record.
type cachedFetch struct {
	Record   *models.FundamentalsRecord `json:"record"`
	Advisory string                     `json:"advisory,omitempty"`
}

// CachedProvider decorates a MarketDataProvider with a time-bounded
// per-ticker cache. Cache failures degrade to a direct fetch; they never fail
// the request.
type CachedProvider struct {
	inner MarketDataProvider
	store cache.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedProvider wraps provider with the given cache and TTL.
func NewCachedProvider(provider MarketDataProvider, store cache.Cache, ttl time.Duration, log zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		inner: provider,
		store: store,
		ttl:   ttl,
		log:   log.With().Str("service", "cached_provider").Logger(),
	}
}

// Fetch returns the cached snapshot for symbol when present, otherwise
// delegates to the wrapped provider and caches the result. Failed fetches are
// not cached: the next call retries upstream.
func (c *CachedProvider) Fetch(ctx context.Context, symbol string) (*models.FundamentalsRecord, string, error) {
	key := cacheKey(symbol)

	var cached cachedFetch
	err := c.store.Get(ctx, key, &cached)
	if err == nil && cached.Record != nil {
		return cached.Record, cached.Advisory, nil
	}
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		c.log.Warn().Str("symbol", symbol).Err(err).Msg("cache read failed, fetching directly")
	}

	rec, advisory, err := c.inner.Fetch(ctx, symbol)
	if err != nil {
		return nil, "", err
	}

	if setErr := c.store.Set(ctx, key, cachedFetch{Record: rec, Advisory: advisory}, c.ttl); setErr != nil {
		c.log.Warn().Str("symbol", symbol).Err(setErr).Msg("cache write failed")
	}

	return rec, advisory, nil
}

func cacheKey(symbol string) string {
	return "fundamentals:" + symbol
}
