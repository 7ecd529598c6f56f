package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"clubify/sources/configuration"
	"clubify/sources/tracing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(
		NewMetricsService,
	),

	fx.Invoke(func(lc fx.Lifecycle, config *configuration.Config, log *tracing.Logger) {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", config.Service.MetricsPort),
			Handler: mux,
		}

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.E("Metrics server failed", tracing.InnerError, err)
					}
				}()
				log.I("Metrics server started", "port", config.Service.MetricsPort)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.I("Metrics server stopping")
				return server.Shutdown(ctx)
			},
		})
	}),
)
