package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetJSON loads key into target. A cache miss is not an error: the
// returned bool reports whether anything was found.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, target interface{}) (bool, error) {
	raw, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return false, err
	}
	return true, nil
}

func SetJSON(ctx context.Context, rdb *redis.Client, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, raw, ttl).Err()
}

// BumpVersion increments the cache generation for a room type. Cached
// availability keys embed the generation, so a bump orphans them all
// without a scan.
func BumpVersion(ctx context.Context, rdb *redis.Client, roomTypeID int64) error {
	return rdb.Incr(ctx, versionKey(roomTypeID)).Err()
}

func Version(ctx context.Context, rdb *redis.Client, roomTypeID int64) (int64, error) {
	v, err := rdb.Get(ctx, versionKey(roomTypeID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

func versionKey(roomTypeID int64) string {
	return fmt.Sprintf("inv:ver:%d", roomTypeID)
}

// Invalidator wraps a Redis client behind the ledger's invalidation
// interface.
type Invalidator struct {
	rdb *redis.Client
}

func NewInvalidator(rdb *redis.Client) *Invalidator {
	return &Invalidator{rdb: rdb}
}

func (i *Invalidator) BumpVersion(ctx context.Context, roomTypeID int64) error {
	return BumpVersion(ctx, i.rdb, roomTypeID)
}
