// Package cache is an optional Redis read-through cache for single-record
// lookups. Records are immutable, so entries never need invalidation and
// expire on TTL only.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pdssp/planet-crs-registry/internal/wkts/domain"
)

const recordKeyPrefix = "crs:wkt:" // crs:wkt:{namespace}:{version}:{code}

// RecordCache caches CRS records in Redis as JSON.
type RecordCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a RecordCache. A zero ttl disables expiry.
func New(client *redis.Client, ttl time.Duration) *RecordCache {
	return &RecordCache{client: client, ttl: ttl}
}

// Get returns the cached record for key, or (nil, nil) on a miss.
func (c *RecordCache) Get(ctx context.Context, key domain.Key) (*domain.CrsRecord, error) {
	data, err := c.client.Get(ctx, recordKeyPrefix+key.String()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	var rec domain.CrsRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return &rec, nil
}

// Set stores a record under its composite key.
func (c *RecordCache) Set(ctx context.Context, rec *domain.CrsRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", rec.ID, err)
	}
	if err := c.client.Set(ctx, recordKeyPrefix+rec.Key().String(), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", rec.ID, err)
	}
	return nil
}
