package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisCache shares role/status entries between portal instances.
// Redis failures are logged and reported as misses so the gate falls back to the profile store.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisCache wraps a redis client; keys are stored under prefix.
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, now: time.Now}
}

func (c *RedisCache) key(userID string) string {
	return c.prefix + userID
}

// Get returns the stored entry for userID.
func (c *RedisCache) Get(ctx context.Context, userID string) (Entry, bool) {
	raw, errGet := c.client.Get(ctx, c.key(userID)).Bytes()
	if errGet != nil {
		if !errors.Is(errGet, redis.Nil) {
			log.WithError(errGet).Warn("role cache: redis get failed")
		}
		return Entry{}, false
	}
	var entry Entry
	if errDecode := json.Unmarshal(raw, &entry); errDecode != nil {
		log.WithError(errDecode).Warn("role cache: corrupt redis entry")
		return Entry{}, false
	}
	return entry, true
}

// Set stores entry with a redis TTL matching its expiry.
func (c *RedisCache) Set(ctx context.Context, userID string, entry Entry) {
	ttl := entry.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return
	}
	raw, errEncode := json.Marshal(entry)
	if errEncode != nil {
		log.WithError(errEncode).Warn("role cache: encode entry")
		return
	}
	if errSet := c.client.Set(ctx, c.key(userID), raw, ttl).Err(); errSet != nil {
		log.WithError(errSet).Warn("role cache: redis set failed")
	}
}

// Clear deletes every key under the cache prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 500).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 500 {
			if errDel := c.client.Del(ctx, batch...).Err(); errDel != nil {
				return errDel
			}
			batch = batch[:0]
		}
	}
	if errIter := iter.Err(); errIter != nil {
		return errIter
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}
