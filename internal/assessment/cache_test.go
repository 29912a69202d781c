// internal/assessment/cache_test.go
package assessment

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hskk-assessor/internal/common/config"
	"hskk-assessor/internal/common/database"
	"hskk-assessor/internal/common/logger"
	"hskk-assessor/internal/common/metrics"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return NewCache(rdb, time.Minute, logger.NewTestLogger(t)), mr
}

func TestCacheKeyIdentity(t *testing.T) {
	cache, _ := newTestCache(t)

	key := cache.Key([]byte("audio"), "HSKKSC1", "ref")
	assert.Equal(t, key, cache.Key([]byte("audio"), "HSKKSC1", "ref"))
	assert.NotEqual(t, key, cache.Key([]byte("audio"), "HSKKSC1", "other"))
	assert.NotEqual(t, key, cache.Key([]byte("other"), "HSKKSC1", "ref"))
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	key := cache.Key([]byte("audio"), "HSKKSC1", "")
	assert.Nil(t, cache.Get(ctx, key))

	stored := &AssessmentResult{AssessmentID: "abc", Success: true, TaskID: "HSKKSC1", TotalScore: 1.8}
	cache.Set(ctx, key, stored)

	got := cache.Get(ctx, key)
	require.NotNil(t, got)
	assert.Equal(t, "abc", got.AssessmentID)
	assert.InDelta(t, 1.8, got.TotalScore, 1e-9)
}

func TestCacheMalformedEntryIsAMiss(t *testing.T) {
	cache, mr := newTestCache(t)

	key := cache.Key([]byte("audio"), "HSKKSC1", "")
	require.NoError(t, mr.Set(key, "not-json"))

	assert.Nil(t, cache.Get(context.Background(), key))
}

func TestCacheBackendErrorIsNotAMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	key := cache.Key([]byte("audio"), "HSKKSC1", "")

	missBefore := testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("miss"))
	errBefore := testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("error"))

	// An empty cache is a miss.
	assert.Nil(t, cache.Get(ctx, key))
	assert.InDelta(t, missBefore+1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("miss")), 1e-9)

	// A dead backend is an error, never a miss, and never a failure.
	mr.Close()
	assert.Nil(t, cache.Get(ctx, key))
	assert.InDelta(t, errBefore+1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("error")), 1e-9)
	assert.InDelta(t, missBefore+1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("miss")), 1e-9)
}
