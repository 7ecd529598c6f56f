package gateway

import (
	"context"
	"net/http"
	"time"

	"clubify/sources/features"
	"clubify/sources/tracing"
)

// TrackEvent ships a telemetry event to the backend. Best effort: the
// caller's flow never depends on it, so failures are logged and
// swallowed. The whole path sits behind a feature toggle.
func (g *Gateway) TrackEvent(ctx context.Context, tgID int64, event string, props map[string]string) {
	if !g.features.IsEnabledDefault(features.FeatureGatewayTelemetry, true) {
		return
	}

	err := g.do(ctx, requestSpec{
		op:     "events.track",
		method: http.MethodPost,
		path:   "/api/v1/events",
		body: TelemetryEvent{
			TelegramID: tgID,
			Event:      event,
			Props:      props,
			OccurredAt: time.Now().UTC(),
		},
	}, nil)

	if err != nil {
		g.log.D("Telemetry event dropped",
			tracing.UserId, tgID,
			"event", event,
			tracing.InnerError, err,
		)
	}
}
