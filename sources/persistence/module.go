package persistence

import (
	"context"

	"clubify/sources/tracing"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("persistence",
	fx.Provide(
		NewRedis,
	),

	fx.Invoke(func(rdb *redis.Client, lc fx.Lifecycle, log *tracing.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := rdb.Ping(ctx).Err(); err != nil {
					log.F("Failed to ping Redis", tracing.InnerError, err)
				} else {
					log.I("Redis connection verified")
				}
				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.I("Closing Redis connection")
				return rdb.Close()
			},
		})
	}),
)
