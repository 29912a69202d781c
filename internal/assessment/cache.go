// internal/assessment/cache.go
package assessment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"hskk-assessor/internal/common/database"
	"hskk-assessor/internal/common/logger"
	"hskk-assessor/internal/common/metrics"
)

// Cache makes retries idempotent: the same audio bytes for the same task and
// reference return the stored result without re-running the pipeline. Cache
// trouble is logged and ignored; it never fails a request.
type Cache struct {
	redis *database.RedisClient
	ttl   time.Duration
	log   logger.Logger
}

func NewCache(redis *database.RedisClient, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{redis: redis, ttl: ttl, log: log}
}

// Key digests the request identity.
func (c *Cache) Key(audio []byte, taskID, referenceText string) string {
	h := sha256.New()
	h.Write(audio)
	h.Write([]byte(taskID))
	h.Write([]byte(referenceText))
	return "assessment:" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result, or nil on miss or error. A backend error is
// not a miss: it gets its own metric label and a log line.
func (c *Cache) Get(ctx context.Context, key string) *AssessmentResult {
	raw, err := c.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheLookups.WithLabelValues("miss").Inc()
			return nil
		}
		c.log.WithError(err).Warn("cache lookup failed", map[string]interface{}{
			"key": key,
		})
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil
	}

	var result AssessmentResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.log.WithError(err).Warn("discarding malformed cache entry", map[string]interface{}{
			"key": key,
		})
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return &result
}

// Set stores a result; failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, result *AssessmentResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		c.log.WithError(err).Warn("failed to serialize result for cache", nil)
		return
	}
	if err := c.redis.Set(ctx, key, string(raw), c.ttl); err != nil {
		c.log.WithError(err).Warn("failed to store result in cache", map[string]interface{}{
			"key": key,
		})
	}
}
