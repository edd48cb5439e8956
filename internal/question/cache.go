package question

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKnownIDTTL = 24 * time.Hour

// IDCache keeps ids of persisted questions in Redis so hot duplicates skip
// the store round-trip. An id is cached only after the store confirmed it,
// never speculatively; an expired entry just costs a re-check.
type IDCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ KnownIDs = (*IDCache)(nil)

func NewIDCache(client *redis.Client, ttl time.Duration) *IDCache {
	if ttl <= 0 {
		ttl = defaultKnownIDTTL
	}
	return &IDCache{client: client, ttl: ttl}
}

func (c *IDCache) key(id int64) string {
	return "questions:known:" + strconv.FormatInt(id, 10)
}

func (c *IDCache) Contains(ctx context.Context, id int64) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *IDCache) Add(ctx context.Context, id int64) error {
	return c.client.Set(ctx, c.key(id), 1, c.ttl).Err()
}
