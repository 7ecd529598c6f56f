package telegram

import (
	"context"
	"os"
	"path/filepath"

	"clubify/sources/gateway"
	"clubify/sources/repository"
	"clubify/sources/texting/format"
	"clubify/sources/tracing"
)

const pageSize = 5

func (h *Handler) onStart(ctx context.Context, event *InboundEvent) {
	user, err := h.backend.UpsertUser(ctx, gateway.UpsertUserRequest{
		TelegramID: event.UserID,
		Username:   event.Message.Username,
		FirstName:  event.Message.FirstName,
		Language:   event.Language,
	})
	if err != nil {
		h.log.E("Failed to register user", tracing.UserId, event.UserID, tracing.InnerError, err)
		h.sendServiceUnavailable(event)
		return
	}

	if user.Language != "" {
		event.Language = h.loc.Normalize(user.Language)
		h.languages.Set(ctx, event.UserID, event.Language)
	}

	name := event.Message.FirstName
	if name == "" {
		name = event.Message.Username
	}

	welcome := h.loc.Td(event.Language, "MsgWelcome", map[string]any{"Name": name})
	h.diplomat.SendWithKeyboard(event.ChatID, welcome, MainMenuKeyboard(h.loc, event.Language))

	h.setState(ctx, event, repository.SessionData{State: repository.StateIdle})
	h.backend.TrackEvent(ctx, event.UserID, "bot_start", nil)
}

func (h *Handler) showMainMenu(ctx context.Context, event *InboundEvent) {
	h.diplomat.SendWithKeyboard(event.ChatID,
		h.loc.T(event.Language, "MsgMainMenu"),
		MainMenuKeyboard(h.loc, event.Language),
	)
	h.setState(ctx, event, repository.SessionData{State: repository.StateIdle})
}

func (h *Handler) onSubscriptionsCallback(ctx context.Context, event *InboundEvent, payload Payload) {
	defer h.diplomat.AnswerCallback(event.Callback.CallbackID, "")

	switch payload.Get("a") {
	case "list":
		h.showSubscriptions(ctx, event, payload.GetInt("p"), event.Callback.MessageID)
	case "detail":
		h.showSubscriptionDetail(ctx, event, payload.GetInt64("id"), payload.GetInt("p"))
	}
}

func (h *Handler) showSubscriptions(ctx context.Context, event *InboundEvent, page, messageID int) {
	if page < 1 {
		page = 1
	}

	result, err := h.backend.GetSubscriptions(ctx, event.UserID, page, pageSize)
	if err != nil {
		h.sendServiceUnavailable(event)
		return
	}

	// The collection may have shrunk since the button was rendered.
	if clamped := ClampPage(page, result.Pages); clamped != page {
		page = clamped
		if result, err = h.backend.GetSubscriptions(ctx, event.UserID, page, pageSize); err != nil {
			h.sendServiceUnavailable(event)
			return
		}
	}

	if len(result.Items) == 0 {
		h.editOrSend(event.ChatID, messageID,
			h.loc.T(event.Language, "MsgSubscriptionsEmpty"),
			SubscriptionsKeyboard(h.loc, event.Language, nil, 1, 1),
		)
		h.setState(ctx, event, repository.SessionData{State: repository.StateSubscriptionsList})
		return
	}

	title := h.loc.Td(event.Language, "MsgSubscriptionsTitle", map[string]any{
		"Page":  page,
		"Pages": max(result.Pages, 1),
	})
	h.editOrSend(event.ChatID, messageID, title,
		SubscriptionsKeyboard(h.loc, event.Language, result.Items, page, result.Pages),
	)
	h.setState(ctx, event, repository.SessionData{State: repository.StateSubscriptionsList})
}

func (h *Handler) showSubscriptionDetail(ctx context.Context, event *InboundEvent, subID int64, page int) {
	sub, err := h.backend.GetSubscription(ctx, event.UserID, subID)
	if err != nil {
		if gateway.IsNotFound(err) {
			h.showSubscriptions(ctx, event, page, event.Callback.MessageID)
			return
		}
		h.sendServiceUnavailable(event)
		return
	}

	text := h.loc.Td(event.Language, "MsgSubscriptionDetail", map[string]any{
		"Service":   sub.ServiceName,
		"Status":    subscriptionStatus(h.loc, event.Language, sub.Status),
		"UntilDate": format.Date(sub.UntilDate, event.Language),
	})

	h.editOrSend(event.ChatID, event.Callback.MessageID, text,
		SubscriptionDetailKeyboard(h.loc, event.Language, subID, page),
	)
	h.setState(ctx, event, repository.SessionData{
		State:          repository.StateSubscriptionDetail,
		SubscriptionID: subID,
	})
}

func (h *Handler) onHistoryCallback(ctx context.Context, event *InboundEvent, payload Payload) {
	defer h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
	h.showHistory(ctx, event, payload.GetInt("p"), event.Callback.MessageID)
}

func (h *Handler) showHistory(ctx context.Context, event *InboundEvent, page, messageID int) {
	if page < 1 {
		page = 1
	}

	result, err := h.backend.GetPayments(ctx, event.UserID, page, pageSize)
	if err != nil {
		h.sendServiceUnavailable(event)
		return
	}

	if clamped := ClampPage(page, result.Pages); clamped != page {
		page = clamped
		if result, err = h.backend.GetPayments(ctx, event.UserID, page, pageSize); err != nil {
			h.sendServiceUnavailable(event)
			return
		}
	}

	if len(result.Items) == 0 {
		h.editOrSend(event.ChatID, messageID,
			h.loc.T(event.Language, "MsgHistoryEmpty"),
			HistoryKeyboard(h.loc, event.Language, nil, 1, 1),
		)
		h.setState(ctx, event, repository.SessionData{State: repository.StatePaymentsHistory})
		return
	}

	title := h.loc.Td(event.Language, "MsgHistoryTitle", map[string]any{
		"Page":  page,
		"Pages": max(result.Pages, 1),
	})
	h.editOrSend(event.ChatID, messageID, title,
		HistoryKeyboard(h.loc, event.Language, result.Items, page, result.Pages),
	)
	h.setState(ctx, event, repository.SessionData{State: repository.StatePaymentsHistory})
}

func (h *Handler) onPaymentDetailCallback(ctx context.Context, event *InboundEvent, payload Payload) {
	defer h.diplomat.AnswerCallback(event.Callback.CallbackID, "")

	payment, err := h.backend.GetPayment(ctx, payload.Get("id"))
	if err != nil {
		if gateway.IsNotFound(err) {
			h.showHistory(ctx, event, payload.GetInt("p"), event.Callback.MessageID)
			return
		}
		h.sendServiceUnavailable(event)
		return
	}

	text := h.loc.Td(event.Language, "MsgPaymentDetail", map[string]any{
		"Amount":      format.Money(payment.Amount, payment.Currency),
		"Date":        format.Date(payment.Date, event.Language),
		"Status":      paymentStatus(h.loc, event.Language, payment.Status),
		"Provider":    payment.Provider,
		"Description": payment.Description,
	})

	h.editOrSend(event.ChatID, event.Callback.MessageID, text,
		PaymentDetailKeyboard(h.loc, event.Language, payload.GetInt("p")),
	)
	h.setState(ctx, event, repository.SessionData{
		State:     repository.StatePaymentDetail,
		PaymentID: payment.EffectiveID(),
	})
}

func (h *Handler) showLanguageSelect(ctx context.Context, event *InboundEvent) {
	h.diplomat.SendWithKeyboard(event.ChatID,
		h.loc.T(event.Language, "MsgLanguageSelect"),
		LanguageKeyboard(h.loc),
	)
	h.setState(ctx, event, repository.SessionData{State: repository.StateLanguageSelect})
}

func (h *Handler) onLanguageCallback(ctx context.Context, event *InboundEvent, payload Payload) {
	lang := h.loc.Normalize(payload.Get("l"))

	if err := h.backend.UpdateUserLanguage(ctx, event.UserID, lang); err != nil {
		h.sendServiceUnavailable(event)
		return
	}

	h.languages.Set(ctx, event.UserID, lang)
	event.Language = lang

	h.diplomat.AnswerCallback(event.Callback.CallbackID, h.loc.T(lang, "MsgLanguageUpdated"))
	h.diplomat.SendWithKeyboard(event.ChatID,
		h.loc.T(lang, "MsgMainMenu"),
		MainMenuKeyboard(h.loc, lang),
	)

	h.setState(ctx, event, repository.SessionData{State: repository.StateIdle})
	h.backend.TrackEvent(ctx, event.UserID, "language_changed", map[string]string{"language": lang})
}

func (h *Handler) showFAQ(ctx context.Context, event *InboundEvent, messageID int) {
	text := h.loc.Td(event.Language, "MsgFAQ", map[string]any{
		"SupportLink": h.config.Telegram.SupportLink,
	})
	h.editOrSend(event.ChatID, messageID, text,
		FAQKeyboard(h.loc, event.Language, h.config.Telegram.SupportLink),
	)
	h.setState(ctx, event, repository.SessionData{State: repository.StateFAQ})
}

func (h *Handler) onNavCallback(ctx context.Context, event *InboundEvent, payload Payload) {
	defer h.diplomat.AnswerCallback(event.Callback.CallbackID, "")

	switch payload.Get("a") {
	case "menu":
		h.diplomat.EditText(event.ChatID, event.Callback.MessageID,
			h.loc.T(event.Language, "MsgMainMenu"), nil)
		h.setState(ctx, event, repository.SessionData{State: repository.StateIdle})
	case "terms":
		h.sendTerms(event)
	}
}

// sendTerms uploads the terms-of-service document for the user's
// language, falling back to a support link when the file is absent.
func (h *Handler) sendTerms(event *InboundEvent) {
	path := filepath.Join(h.config.Telegram.OffersDir, "terms_"+event.Language+".pdf")

	if _, err := os.Stat(path); err != nil {
		h.log.W("Terms document unavailable", "path", path, tracing.InnerError, err)
		h.diplomat.SendText(event.ChatID, h.loc.Td(event.Language, "MsgTermsUnavailable", map[string]any{
			"SupportLink": h.config.Telegram.SupportLink,
		}))
		return
	}

	if err := h.diplomat.SendDocument(event.ChatID, path, ""); err != nil {
		h.diplomat.SendText(event.ChatID, h.loc.Td(event.Language, "MsgTermsUnavailable", map[string]any{
			"SupportLink": h.config.Telegram.SupportLink,
		}))
	}
}
