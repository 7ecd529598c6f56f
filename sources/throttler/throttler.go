package throttler

import (
	"context"
	"fmt"

	"clubify/sources/configuration"
	"clubify/sources/tracing"

	"github.com/redis/go-redis/v9"
)

// Throttler is a fixed-window per-user limiter over Redis INCR. It
// fails open: a Redis outage must never silence the bot.
type Throttler struct {
	rdb    *redis.Client
	config *configuration.Config
	log    *tracing.Logger
}

func NewThrottler(rdb *redis.Client, config *configuration.Config, log *tracing.Logger) *Throttler {
	return &Throttler{rdb: rdb, config: config, log: log}
}

func (t *Throttler) key(tgID int64) string {
	return fmt.Sprintf("%sthrottle:%d", t.config.Redis.KeyPrefix, tgID)
}

func (t *Throttler) IsAllowed(ctx context.Context, tgID int64) bool {
	key := t.key(tgID)

	count, err := t.rdb.Incr(ctx, key).Result()
	if err != nil {
		t.log.W("Throttle counter unavailable, allowing", tracing.UserId, tgID, tracing.InnerError, err)
		return true
	}

	if count == 1 {
		if err := t.rdb.Expire(ctx, key, t.config.Throttler.Window).Err(); err != nil {
			t.log.W("Failed to arm throttle window", tracing.UserId, tgID, tracing.InnerError, err)
		}
	}

	return count <= int64(t.config.Throttler.MaxRequests)
}
