package main

import (
	"context"
	"time"

	"clubify/sources/broadcast"
	"clubify/sources/configuration"
	"clubify/sources/features"
	"clubify/sources/gateway"
	"clubify/sources/internalapi"
	"clubify/sources/localization"
	"clubify/sources/metrics"
	"clubify/sources/network"
	"clubify/sources/persistence"
	"clubify/sources/platform"
	"clubify/sources/repository"
	"clubify/sources/telegram"
	"clubify/sources/throttler"
	"clubify/sources/tracing"

	"go.uber.org/fx"
)

var (
	version   = "0.0.0"
	buildTime = "1970-01-01"
)

func main() {
	platform.SetAppManifest(version, buildTime, time.Now())

	fx.New(
		tracing.Module,
		configuration.Module,
		persistence.Module,
		network.Module,
		features.Module,
		metrics.Module,
		gateway.Module,
		repository.Module,
		throttler.Module,
		localization.Module,
		broadcast.Module,
		telegram.Module,
		internalapi.Module,

		fx.Invoke(func(lc fx.Lifecycle, log *tracing.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.I("Clubify started successfully", "version", version, "build_time", buildTime)
					return nil
				},
				OnStop: func(ctx context.Context) error {
					log.I("Clubify stopped", "version", version, "build_time", buildTime)
					return nil
				},
			})
		}),
	).Run()
}
