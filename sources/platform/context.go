package platform

import (
	"context"
)

// Update handling must outlast a full gateway retry cycle, hence the
// generous default.
var defaultTimeout = GetAsDuration("CONTEXT_TIMEOUT", "45s")

func ContextTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultTimeout)
}
