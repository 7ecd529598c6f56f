package internalapi

import (
	"context"
	"errors"
	"net/http"

	"clubify/sources/gateway"
	"clubify/sources/repository"
	"clubify/sources/telegram"
	"clubify/sources/tracing"

	"go.uber.org/fx"
)

var Module = fx.Module("internalapi",
	fx.Provide(
		NewReconciler,
		NewServer,
		func(r *repository.PaymentContextRepository) ContextStore { return r },
		func(r *repository.LanguageRepository) LanguageResolver { return r },
		func(d *telegram.Diplomat) Messenger { return d },
		func(g *gateway.Gateway) Backend { return g },
	),

	fx.Invoke(func(lc fx.Lifecycle, server *Server, log *tracing.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := server.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.E("Webhook server failed", tracing.InnerError, err)
					}
				}()
				log.I("Webhook server started", "addr", server.httpServer.Addr)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.I("Webhook server stopping")
				return server.httpServer.Shutdown(ctx)
			},
		})
	}),
)
