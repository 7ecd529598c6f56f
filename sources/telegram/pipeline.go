package telegram

import (
	"context"
	"slices"

	"clubify/sources/configuration"
	"clubify/sources/gateway"
	"clubify/sources/localization"
	"clubify/sources/metrics"
	"clubify/sources/repository"
	"clubify/sources/throttler"
	"clubify/sources/tracing"
)

// Interceptor inspects or enriches an inbound event before handling.
// Returning false short-circuits the rest of the pipeline and the
// handler.
type Interceptor func(ctx context.Context, event *InboundEvent) bool

type Pipeline struct {
	interceptors []Interceptor
}

func NewPipeline(
	config *configuration.Config,
	throttle *throttler.Throttler,
	languages *repository.LanguageRepository,
	backend *gateway.Gateway,
	loc *localization.Manager,
	diplomat *Diplomat,
	metrics *metrics.MetricsService,
	log *tracing.Logger,
) *Pipeline {
	return &Pipeline{interceptors: []Interceptor{
		throttleInterceptor(throttle, loc, diplomat, metrics),
		languageInterceptor(languages, backend, loc, log),
		adminInterceptor(config),
	}}
}

func (p *Pipeline) Run(ctx context.Context, event *InboundEvent) bool {
	for _, interceptor := range p.interceptors {
		if !interceptor(ctx, event) {
			return false
		}
	}
	return true
}

// throttleInterceptor drops events over the per-user window. The user
// is told once per drop, in the default language when the event was
// dropped before language resolution.
func throttleInterceptor(throttle *throttler.Throttler, loc *localization.Manager, diplomat *Diplomat, metrics *metrics.MetricsService) Interceptor {
	return func(ctx context.Context, event *InboundEvent) bool {
		if throttle.IsAllowed(ctx, event.UserID) {
			return true
		}

		if metrics != nil {
			metrics.RecordThrottleRejection()
		}

		text := loc.T(loc.Default(), "MsgThrottled")
		if event.Callback != nil {
			diplomat.AnswerCallback(event.Callback.CallbackID, text)
		} else {
			diplomat.SendText(event.ChatID, text)
		}
		return false
	}
}

// languageInterceptor resolves the user's language: Redis cache first,
// then the backend profile, then the configured default. Resolution
// failures never block the event.
func languageInterceptor(languages *repository.LanguageRepository, backend *gateway.Gateway, loc *localization.Manager, log *tracing.Logger) Interceptor {
	return func(ctx context.Context, event *InboundEvent) bool {
		if cached := languages.Get(ctx, event.UserID); cached != "" {
			event.Language = loc.Normalize(cached)
			return true
		}

		user, err := backend.GetUser(ctx, event.UserID)
		if err == nil && user.Language != "" {
			event.Language = loc.Normalize(user.Language)
			languages.Set(ctx, event.UserID, event.Language)
			return true
		}
		if err != nil && !gateway.IsNotFound(err) {
			log.D("Language lookup failed, using default", tracing.UserId, event.UserID, tracing.InnerError, err)
		}

		event.Language = loc.Default()
		return true
	}
}

func adminInterceptor(config *configuration.Config) Interceptor {
	return func(ctx context.Context, event *InboundEvent) bool {
		event.IsAdmin = slices.Contains(config.Telegram.AdminIDs, event.UserID)
		return true
	}
}
