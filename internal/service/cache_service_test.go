package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCacheServiceRecordsHitsAndMisses(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCache(), metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest map[string]int
	hit, err := cache.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "k", map[string]int{"a": 1}, 0))
	hit, err = cache.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, dest["a"])

	require.NoError(t, cache.Invalidate(ctx, "k*"))
	hit, _ = cache.Get(ctx, "k", &dest)
	assert.False(t, hit)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(2), snap.CacheMisses)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, time.Minute, nil, false)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", 1, 0))
	assert.Empty(t, repo.keys(""))

	var dest int
	hit, err := cache.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
}

func TestMetricsServiceCalculationSummary(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveCalculation("stats", 2*time.Millisecond)
	metrics.ObserveCalculation("stats", 4*time.Millisecond)
	metrics.RecordMilestone(MilestoneOverallSafe)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(2), snap.Calculations)
	assert.InDelta(t, 3.0, snap.AverageCalculationMs, 0.001)

	var nilMetrics *MetricsService
	assert.NotPanics(t, func() { nilMetrics.ObserveCalculation("stats", time.Millisecond) })
}
