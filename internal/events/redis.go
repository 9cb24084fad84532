package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans events out over Redis pub/sub, one channel per
// event type so consumers subscribe only to what they handle.
type RedisPublisher struct {
	rdb     *redis.Client
	prefix  string
	loggerf func(format string, args ...interface{})
}

func NewRedisPublisher(rdb *redis.Client, loggerf func(format string, args ...interface{})) *RedisPublisher {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &RedisPublisher{rdb: rdb, prefix: "events:", loggerf: loggerf}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.Type, err)
	}

	if err := p.rdb.Publish(ctx, p.prefix+e.Type, payload).Err(); err != nil {
		p.loggerf("level=error msg=event publish failed type=%s err=%v", e.Type, err)
		return fmt.Errorf("publish event %s: %w", e.Type, err)
	}
	return nil
}
