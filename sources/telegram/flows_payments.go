package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"

	"clubify/sources/gateway"
	"clubify/sources/repository"
	"clubify/sources/texting/format"
	"clubify/sources/tracing"

	"github.com/google/uuid"
)

func (h *Handler) onPaymentCallback(ctx context.Context, event *InboundEvent, payload Payload) {
	switch payload.Get("a") {
	case "options":
		h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
		h.showPaymentOptions(ctx, event, payload.GetInt64("id"))
	case "create":
		h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
		h.onCreatePayment(ctx, event, payload.Get("id"))
	case "check":
		h.onCheckPayment(ctx, event, payload.Get("pid"))
	case "cancel":
		h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
		h.onCancelPayment(ctx, event, payload.Get("pid"))
	}
}

func (h *Handler) onRenewCallback(ctx context.Context, event *InboundEvent, payload Payload) {
	h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
	h.showPaymentOptions(ctx, event, payload.GetInt64("id"))
}

func (h *Handler) showPaymentOptions(ctx context.Context, event *InboundEvent, subID int64) {
	options, err := h.backend.GetPaymentOptions(ctx, event.UserID, subID)
	if err != nil {
		h.sendServiceUnavailable(event)
		return
	}

	h.editOrSend(event.ChatID, event.Callback.MessageID,
		h.loc.T(event.Language, "MsgChooseMethod"),
		PaymentMethodsKeyboard(h.loc, event.Language, subID, options),
	)
	h.setState(ctx, event, repository.SessionData{
		State:          repository.StatePaymentMethodSelect,
		SubscriptionID: subID,
	})
}

// onCreatePayment turns a provider-and-plan choice into a pending
// payment. The idempotency key guards against Telegram redelivering
// the same button press.
func (h *Handler) onCreatePayment(ctx context.Context, event *InboundEvent, composite string) {
	parts := strings.SplitN(composite, ":", 3)
	if len(parts) != 3 {
		h.log.W("Malformed payment choice", tracing.CallbackData, composite)
		return
	}
	subID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		h.log.W("Malformed subscription id in payment choice", tracing.CallbackData, composite)
		return
	}

	payment, err := h.backend.CreatePayment(ctx, gateway.CreatePaymentRequest{
		TelegramID:     event.UserID,
		SubscriptionID: subID,
		Provider:       parts[1],
		PlanCode:       parts[2],
	}, uuid.NewString())
	if err != nil {
		if gateway.IsBadRequest(err) {
			h.editOrSend(event.ChatID, event.Callback.MessageID,
				h.loc.T(event.Language, "MsgPaymentFailed"),
				PaymentFailedKeyboard(h.loc, event.Language, subID),
			)
			return
		}
		h.sendServiceUnavailable(event)
		return
	}

	minutes := format.MinutesUntil(payment.ExpiresAt, time.Now())
	text := h.loc.Td(event.Language, "MsgPaymentWaiting", map[string]any{"Minutes": minutes})

	messageID := h.editOrSend(event.ChatID, event.Callback.MessageID, text,
		PaymentWaitingKeyboard(h.loc, event.Language, payment.EffectiveLink(), payment.EffectiveID()),
	)

	if err := h.payctx.Set(ctx, payment.EffectiveID(), repository.PaymentContext{
		TelegramID:     event.UserID,
		SubscriptionID: subID,
		MessageID:      messageID,
	}); err != nil {
		h.log.E("Payment context not stored, webhook will miss this payment",
			tracing.PaymentId, payment.EffectiveID(),
			tracing.InnerError, err,
		)
	}

	h.setState(ctx, event, repository.SessionData{
		State:          repository.StatePaymentPending,
		SubscriptionID: subID,
		PaymentID:      payment.EffectiveID(),
	})
	h.backend.TrackEvent(ctx, event.UserID, "payment_created", map[string]string{
		"provider": parts[1],
		"plan":     parts[2],
	})
}

func (h *Handler) onCheckPayment(ctx context.Context, event *InboundEvent, paymentID string) {
	payment, err := h.backend.GetPayment(ctx, paymentID)
	if err != nil {
		h.diplomat.AnswerCallbackAlert(event.Callback.CallbackID,
			h.loc.T(event.Language, "MsgServiceUnavailable"))
		return
	}

	switch payment.Status {
	case "paid":
		h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
		h.finishPaidPayment(ctx, event, paymentID)
	case "created", "pending":
		h.diplomat.AnswerCallback(event.Callback.CallbackID,
			h.loc.T(event.Language, "MsgPaymentStillPending"))
	default:
		h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
		subID := h.subscriptionFor(ctx, event, paymentID)
		h.editOrSend(event.ChatID, event.Callback.MessageID,
			h.loc.T(event.Language, "MsgPaymentFailed"),
			PaymentFailedKeyboard(h.loc, event.Language, subID),
		)
		h.setState(ctx, event, repository.SessionData{State: repository.StateIdle})
	}
}

func (h *Handler) finishPaidPayment(ctx context.Context, event *InboundEvent, paymentID string) {
	subID := h.subscriptionFor(ctx, event, paymentID)

	untilDate := ""
	if subID != 0 {
		if sub, err := h.backend.GetSubscription(ctx, event.UserID, subID); err == nil {
			untilDate = format.Date(sub.UntilDate, event.Language)
		}
	}

	text := h.loc.Td(event.Language, "MsgPaymentSuccess", map[string]any{"UntilDate": untilDate})
	h.diplomat.EditText(event.ChatID, event.Callback.MessageID, text, nil)

	h.payctx.Clear(ctx, paymentID)
	h.setState(ctx, event, repository.SessionData{State: repository.StateIdle})
	h.backend.TrackEvent(ctx, event.UserID, "payment_confirmed", nil)
}

func (h *Handler) onCancelPayment(ctx context.Context, event *InboundEvent, paymentID string) {
	if err := h.backend.CancelPayment(ctx, paymentID); err != nil && !gateway.IsNotFound(err) {
		h.sendServiceUnavailable(event)
		return
	}

	h.payctx.Clear(ctx, paymentID)
	h.diplomat.EditText(event.ChatID, event.Callback.MessageID,
		h.loc.T(event.Language, "MsgPaymentCancelled"), nil)
	h.setState(ctx, event, repository.SessionData{State: repository.StateIdle})
	h.backend.TrackEvent(ctx, event.UserID, "payment_cancelled", nil)
}

// subscriptionFor recovers the subscription behind a payment, trying
// the stored payment context first and the session second.
func (h *Handler) subscriptionFor(ctx context.Context, event *InboundEvent, paymentID string) int64 {
	if stored, err := h.payctx.Get(ctx, paymentID); err == nil && stored != nil {
		return stored.SubscriptionID
	}

	session := h.sessions.Get(ctx, event.UserID)
	if session.PaymentID == paymentID {
		return session.SubscriptionID
	}
	return 0
}
