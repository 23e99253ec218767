// Package cache holds the Redis-backed document id cache. Document ids are
// permanent once registered, so entries carry a long TTL purely to bound
// memory; a miss falls through to the store.
package cache

import (
	"context"
	"time"

	platformredis "mhregistry/internal/platform/redis"
)

const (
	docIDKeyPrefix = "mhr:docid:"
	docIDTTL       = 30 * 24 * time.Hour
)

// DocIDCache answers "has this document id been registered" from Redis.
type DocIDCache struct {
	client *platformredis.Client
}

// NewDocIDCache wraps a connected Redis client.
func NewDocIDCache(client *platformredis.Client) *DocIDCache {
	return &DocIDCache{client: client}
}

// Seen reports whether the document id is cached as registered.
func (c *DocIDCache) Seen(ctx context.Context, documentID string) (bool, error) {
	n, err := c.client.Exists(ctx, docIDKeyPrefix+documentID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Remember caches a registered document id.
func (c *DocIDCache) Remember(ctx context.Context, documentID string) error {
	return c.client.Set(ctx, docIDKeyPrefix+documentID, "1", docIDTTL).Err()
}
