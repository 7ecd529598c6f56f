package metrics

import (
	"time"

	"clubify/sources/tracing"

	"github.com/prometheus/client_golang/prometheus"
)

type MetricsService struct {
	log *tracing.Logger
}

var (
	messagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubify_messages_sent_total",
			Help: "Total number of messages sent to Telegram",
		},
		[]string{"status"},
	)

	commandsUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubify_commands_used_total",
			Help: "Total number of slash commands handled",
		},
		[]string{"command"},
	)

	callbacksHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubify_callbacks_handled_total",
			Help: "Total number of callback queries handled",
		},
		[]string{"kind"},
	)

	throttleRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clubify_throttle_rejections_total",
			Help: "Total number of inbound events rejected by the throttler",
		},
	)

	reconcileEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubify_reconcile_events_total",
			Help: "Total number of payment reconciliation events processed",
		},
		[]string{"outcome"},
	)

	broadcastDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubify_broadcast_deliveries_total",
			Help: "Total number of broadcast deliveries attempted",
		},
		[]string{"status"},
	)

	gatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubify_gateway_requests_total",
			Help: "Total number of backend gateway requests",
		},
		[]string{"op", "status"},
	)

	gatewayRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clubify_gateway_retries_total",
			Help: "Total number of backend gateway retries after HTTP 429",
		},
	)

	gatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clubify_gateway_request_duration_seconds",
			Help:    "Duration of backend gateway requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(messagesSent)
	prometheus.MustRegister(commandsUsed)
	prometheus.MustRegister(callbacksHandled)
	prometheus.MustRegister(throttleRejections)
	prometheus.MustRegister(reconcileEvents)
	prometheus.MustRegister(broadcastDeliveries)
	prometheus.MustRegister(gatewayRequests)
	prometheus.MustRegister(gatewayRetries)
	prometheus.MustRegister(gatewayRequestDuration)
}

func NewMetricsService(log *tracing.Logger) *MetricsService {
	return &MetricsService{
		log: log,
	}
}

func (s *MetricsService) RecordMessageSent(status string) {
	messagesSent.WithLabelValues(status).Inc()
}

func (s *MetricsService) RecordCommandUsed(command string) {
	commandsUsed.WithLabelValues(command).Inc()
}

func (s *MetricsService) RecordCallbackHandled(kind string) {
	callbacksHandled.WithLabelValues(kind).Inc()
}

func (s *MetricsService) RecordThrottleRejection() {
	throttleRejections.Inc()
}

func (s *MetricsService) RecordReconcileEvent(outcome string) {
	reconcileEvents.WithLabelValues(outcome).Inc()
}

func (s *MetricsService) RecordBroadcastDelivery(status string) {
	broadcastDeliveries.WithLabelValues(status).Inc()
}

func (s *MetricsService) RecordGatewayRequest(op, status string) {
	gatewayRequests.WithLabelValues(op, status).Inc()
}

func (s *MetricsService) RecordGatewayRetry() {
	gatewayRetries.Inc()
}

func (s *MetricsService) RecordGatewayRequestDuration(op string, duration time.Duration) {
	gatewayRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
}
