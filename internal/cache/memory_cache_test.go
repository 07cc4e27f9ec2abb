package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/erms/internal/domain"
)

func TestMemoryCacheDropsStaleGeneration(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCapacityCache(time.Minute)
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	gen, err := c.Generation(ctx, "eng-1")
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "eng-1"))

	require.NoError(t, c.Set(ctx, &domain.CapacitySummary{EngineerID: "eng-1", AsOf: day, MaxCapacity: 100}, gen))
	_, ok, err := c.Get(ctx, "eng-1", day)
	require.NoError(t, err)
	assert.False(t, ok, "summary computed before an invalidation must not be stored")

	gen, err = c.Generation(ctx, "eng-1")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, &domain.CapacitySummary{EngineerID: "eng-1", AsOf: day, TotalAllocated: 40}, gen))
	got, ok, err := c.Get(ctx, "eng-1", day)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 40, got.TotalAllocated)
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCapacityCache(time.Minute)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	day := domain.Day(now)

	require.NoError(t, c.Set(ctx, &domain.CapacitySummary{EngineerID: "eng-1", AsOf: day}, 0))
	_, ok, _ := c.Get(ctx, "eng-1", day)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.Get(ctx, "eng-1", day)
	assert.False(t, ok)
}
