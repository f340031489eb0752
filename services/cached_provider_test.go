package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kurgan-screener/cache"
	"kurgan-screener/models"
)

type fakeProvider struct {
	calls   int
	records map[string]*models.FundamentalsRecord
}

func (f *fakeProvider) Fetch(_ context.Context, symbol string) (*models.FundamentalsRecord, string, error) {
	f.calls++
	rec, ok := f.records[symbol]
	if !ok {
		return nil, "", fmt.Errorf("fetch %s: %w", symbol, ErrNoData)
	}
	return rec, "", nil
}

func TestCachedProviderCachesHits(t *testing.T) {
	inner := &fakeProvider{records: map[string]*models.FundamentalsRecord{
		"EREGL": {Symbol: "EREGL", Price: models.Float(51.2), EPS: models.Float(10)},
	}}
	cached := NewCachedProvider(inner, cache.NewMemoryCache(), time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, advisory, err := cached.Fetch(ctx, "EREGL")
	require.NoError(t, err)
	assert.Empty(t, advisory)
	require.NotNil(t, first.Price)

	second, _, err := cached.Fetch(ctx, "EREGL")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "second fetch must come from cache")

	require.NotNil(t, second.EPS)
	assert.InDelta(t, 10.0, *second.EPS, 1e-9)
	require.NotNil(t, second.Price)
	assert.InDelta(t, 51.2, *second.Price, 1e-9)
}

func TestCachedProviderDoesNotCacheFailures(t *testing.T) {
	inner := &fakeProvider{records: map[string]*models.FundamentalsRecord{}}
	cached := NewCachedProvider(inner, cache.NewMemoryCache(), time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, _, err := cached.Fetch(ctx, "ZZZZZ")
	require.ErrorIs(t, err, ErrNoData)

	_, _, err = cached.Fetch(ctx, "ZZZZZ")
	require.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, 2, inner.calls, "failures must retry upstream")
}
