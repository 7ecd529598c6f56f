package internalapi

import (
	"context"
	"time"

	"clubify/sources/gateway"
	"clubify/sources/localization"
	"clubify/sources/metrics"
	"clubify/sources/repository"
	"clubify/sources/telegram"
	"clubify/sources/texting/format"
	"clubify/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ContextStore is the slice of the payment-context repository the
// reconciler needs.
type ContextStore interface {
	Get(ctx context.Context, paymentID string) (*repository.PaymentContext, error)
	UpdateMessageID(ctx context.Context, paymentID string, messageID int) error
	Clear(ctx context.Context, paymentID string) error
}

// Messenger is the outbound surface the reconciler talks through.
type Messenger interface {
	EditText(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error
	SendWithKeyboard(chatID int64, text string, markup any) (int, error)
}

// LanguageResolver returns the user's cached language, or "" when
// unknown.
type LanguageResolver interface {
	Get(ctx context.Context, tgID int64) string
}

// Backend is the slice of the gateway the reconciler reads from. The
// webhook body only identifies the payment; expiry, pay links and the
// new validity date come from these.
type Backend interface {
	GetPayment(ctx context.Context, paymentID string) (*gateway.Payment, error)
	GetSubscription(ctx context.Context, tgID, subscriptionID int64) (*gateway.Subscription, error)
}

type Outcome int

const (
	OutcomeProcessed Outcome = iota
	OutcomeNoContext
)

// PaymentEvent is the reconciliation notification the backend posts
// after its provider callback fires.
type PaymentEvent struct {
	PaymentID string `json:"payment_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

// RenewalEvent asks the bot to nudge a user about an expiring
// subscription.
type RenewalEvent struct {
	TelegramID     int64  `json:"tg_id" binding:"required"`
	SubscriptionID int64  `json:"subscription_id" binding:"required"`
	ServiceName    string `json:"service_name"`
	UntilDate      string `json:"until_date"`
}

// Reconciler applies asynchronous payment outcomes to the conversation:
// it finds the status message a payment belongs to and rewrites it.
type Reconciler struct {
	store     ContextStore
	messenger Messenger
	languages LanguageResolver
	backend   Backend
	loc       *localization.Manager
	metrics   *metrics.MetricsService
	log       *tracing.Logger
	now       func() time.Time
}

func NewReconciler(
	store ContextStore,
	messenger Messenger,
	languages LanguageResolver,
	backend Backend,
	loc *localization.Manager,
	metrics *metrics.MetricsService,
	log *tracing.Logger,
) *Reconciler {
	return &Reconciler{
		store:     store,
		messenger: messenger,
		languages: languages,
		backend:   backend,
		loc:       loc,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// HandlePaymentEvent applies one status notification. OutcomeNoContext
// means the payment is unknown or its context expired; the caller
// acknowledges so the backend stops redelivering.
func (r *Reconciler) HandlePaymentEvent(ctx context.Context, event PaymentEvent) (Outcome, error) {
	stored, err := r.store.Get(ctx, event.PaymentID)
	if err != nil {
		r.record("error")
		return OutcomeProcessed, err
	}
	if stored == nil {
		r.log.I("No context for payment event, acknowledging",
			tracing.PaymentId, event.PaymentID,
			tracing.PaymentStatus, event.Status,
		)
		r.record("no_context")
		return OutcomeNoContext, nil
	}

	lang := r.languages.Get(ctx, stored.TelegramID)
	lang = r.loc.Normalize(lang)

	r.log.I("Reconciling payment",
		tracing.PaymentId, event.PaymentID,
		tracing.PaymentStatus, event.Status,
		tracing.UserId, stored.TelegramID,
	)

	// The webhook body only triggers the reconciliation; expiry and the
	// pay link come from the authoritative record. A fetch failure
	// degrades the screen, it never drops the notification.
	payment, err := r.backend.GetPayment(ctx, event.PaymentID)
	if err != nil {
		r.log.W("Payment fetch failed, reconciling without details",
			tracing.PaymentId, event.PaymentID,
			tracing.InnerError, err,
		)
		payment = nil
	}

	switch event.Status {
	case "paid":
		untilDate := "—"
		if stored.SubscriptionID != 0 {
			if sub, err := r.backend.GetSubscription(ctx, stored.TelegramID, stored.SubscriptionID); err == nil && sub.UntilDate != "" {
				untilDate = format.Date(sub.UntilDate, lang)
			} else if err != nil {
				r.log.W("Subscription fetch failed after payment",
					tracing.SubscriptionId, stored.SubscriptionID,
					tracing.InnerError, err,
				)
			}
		}
		text := r.loc.Td(lang, "MsgPaymentSuccess", map[string]any{
			"UntilDate": untilDate,
		})
		r.editOrResend(ctx, event.PaymentID, stored, text, nil)
		if err := r.store.Clear(ctx, event.PaymentID); err != nil {
			r.log.W("Failed to clear payment context", tracing.PaymentId, event.PaymentID, tracing.InnerError, err)
		}
		r.record("paid")

	case "created", "pending":
		expiresAt, payLink := "", ""
		if payment != nil {
			expiresAt = payment.ExpiresAt
			payLink = payment.EffectiveLink()
		}
		text := r.loc.Td(lang, "MsgPaymentWaiting", map[string]any{
			"Minutes": format.MinutesUntil(expiresAt, r.now()),
		})
		markup := telegram.PaymentPendingKeyboard(r.loc, lang, event.PaymentID)
		if payLink != "" {
			markup = telegram.PaymentWaitingKeyboard(r.loc, lang, payLink, event.PaymentID)
		}
		r.editOrResend(ctx, event.PaymentID, stored, text, &markup)
		r.record("pending")

	default:
		text := r.loc.T(lang, "MsgPaymentFailed")
		markup := telegram.PaymentFailedKeyboard(r.loc, lang, stored.SubscriptionID)
		r.editOrResend(ctx, event.PaymentID, stored, text, &markup)
		r.record("failed")
	}

	return OutcomeProcessed, nil
}

// editOrResend edits the tracked status message, and when the edit is
// impossible sends a replacement and re-points the context at it.
func (r *Reconciler) editOrResend(ctx context.Context, paymentID string, stored *repository.PaymentContext, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	if err := r.messenger.EditText(stored.TelegramID, stored.MessageID, text, markup); err == nil {
		return
	}

	var sendMarkup any
	if markup != nil {
		sendMarkup = *markup
	}

	newID, err := r.messenger.SendWithKeyboard(stored.TelegramID, text, sendMarkup)
	if err != nil {
		r.log.E("Failed to deliver payment status",
			tracing.PaymentId, paymentID,
			tracing.UserId, stored.TelegramID,
			tracing.InnerError, err,
		)
		return
	}

	if err := r.store.UpdateMessageID(ctx, paymentID, newID); err != nil {
		r.log.W("Failed to repoint payment context",
			tracing.PaymentId, paymentID,
			tracing.InnerError, err,
		)
	}
}

// HandleRenewalEvent sends an expiry nudge with a renew button.
func (r *Reconciler) HandleRenewalEvent(ctx context.Context, event RenewalEvent) error {
	lang := r.loc.Normalize(r.languages.Get(ctx, event.TelegramID))

	text := r.loc.Td(lang, "MsgRenewalNudge", map[string]any{
		"Service":   event.ServiceName,
		"UntilDate": format.Date(event.UntilDate, lang),
	})

	_, err := r.messenger.SendWithKeyboard(event.TelegramID, text,
		telegram.RenewKeyboard(r.loc, lang, event.SubscriptionID))
	if err != nil {
		r.log.E("Failed to send renewal nudge",
			tracing.UserId, event.TelegramID,
			tracing.SubscriptionId, event.SubscriptionID,
			tracing.InnerError, err,
		)
		return err
	}

	r.record("renewal")
	return nil
}

func (r *Reconciler) record(outcome string) {
	if r.metrics != nil {
		r.metrics.RecordReconcileEvent(outcome)
	}
}
