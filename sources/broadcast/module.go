package broadcast

import (
	"clubify/sources/gateway"

	"go.uber.org/fx"
)

var Module = fx.Module("broadcast",
	fx.Provide(
		NewEngine,
		func(g *gateway.Gateway) RecipientSource { return g },
	),
)
