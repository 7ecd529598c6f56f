package broadcast

import (
	"context"
	"errors"
	"time"

	"clubify/sources/configuration"
	"clubify/sources/gateway"
	"clubify/sources/metrics"
	"clubify/sources/tracing"
)

// ErrRecipientUnavailable marks a recipient that cannot be reached at
// all (blocked the bot, deactivated account). Counted as skipped, not
// failed.
var ErrRecipientUnavailable = errors.New("broadcast: recipient unavailable")

// RecipientSource pages through the audience of a segment.
type RecipientSource interface {
	GetBroadcastRecipients(ctx context.Context, segment string, cursor string, limit int) (*gateway.RecipientsPage, error)
}

// Deliverer sends one broadcast message to one chat.
type Deliverer interface {
	DeliverText(ctx context.Context, chatID int64, text string) error
}

type Report struct {
	Delivered int
	Failed    int
	Skipped   int
}

// Engine walks a segment's recipients and delivers the text to each,
// pausing after every DeliveryRPS sends so Telegram's flood limits are
// never hit.
type Engine struct {
	source    RecipientSource
	deliverer Deliverer
	config    *configuration.Config
	log       *tracing.Logger
	metrics   *metrics.MetricsService
	sleep     func(time.Duration)
}

func NewEngine(
	source RecipientSource,
	deliverer Deliverer,
	config *configuration.Config,
	log *tracing.Logger,
	metrics *metrics.MetricsService,
) *Engine {
	return &Engine{
		source:    source,
		deliverer: deliverer,
		config:    config,
		log:       log,
		metrics:   metrics,
		sleep:     time.Sleep,
	}
}

// Run delivers text to every recipient of the segment. A recipient
// failure is tallied and the run continues; a fetch failure aborts the
// run but the report keeps everything counted so far.
func (e *Engine) Run(ctx context.Context, segment Segment, text string) (Report, error) {
	defer tracing.ProfilePoint(e.log, "Broadcast finished", "broadcast.run", tracing.Segment, segment.String())()

	var report Report
	cursor := ""
	sent := 0

	for {
		page, err := e.source.GetBroadcastRecipients(ctx, segment.String(), cursor, e.config.Broadcast.BatchSize)
		if err != nil {
			e.log.E("Failed to fetch broadcast recipients",
				tracing.Segment, segment.String(),
				tracing.Cursor, cursor,
				tracing.InnerError, err,
			)
			return report, err
		}

		for _, chatID := range page.Items {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			switch err := e.deliverer.DeliverText(ctx, chatID, text); {
			case err == nil:
				report.Delivered++
				e.record("delivered")
			case errors.Is(err, ErrRecipientUnavailable):
				report.Skipped++
				e.record("skipped")
			default:
				report.Failed++
				e.record("failed")
				e.log.W("Broadcast delivery failed", tracing.ChatId, chatID, tracing.InnerError, err)
			}

			sent++
			if e.config.Broadcast.DeliveryRPS > 0 && sent%e.config.Broadcast.DeliveryRPS == 0 {
				e.sleep(time.Second)
			}
		}

		// An empty page ends the run even when a cursor came with it;
		// trusting the cursor alone would loop on a misbehaving backend.
		if len(page.Items) == 0 || page.NextCursor == "" {
			return report, nil
		}
		cursor = page.NextCursor
	}
}

func (e *Engine) record(status string) {
	if e.metrics != nil {
		e.metrics.RecordBroadcastDelivery(status)
	}
}
