package telegram

import (
	"context"

	"clubify/sources/broadcast"

	"go.uber.org/fx"
)

var Module = fx.Module("telegram",
	fx.Provide(
		NewBotAPI,
		NewDiplomat,
		NewPipeline,
		NewHandler,
		NewPoller,
		func(d *Diplomat) broadcast.Deliverer { return d },
	),

	fx.Invoke(func(lc fx.Lifecycle, poller *Poller) {
		pollCtx, cancel := context.WithCancel(context.Background())

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go poller.Run(pollCtx)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				cancel()
				poller.Stop()
				return nil
			},
		})
	}),
)
