package telegram

import (
	"context"
	"errors"
	"slices"
	"strings"

	"clubify/sources/broadcast"
	"clubify/sources/configuration"
	"clubify/sources/features"
	"clubify/sources/gateway"
	"clubify/sources/localization"
	"clubify/sources/metrics"
	"clubify/sources/repository"
	"clubify/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Handler turns inbound events into conversation steps. One instance
// serves all chats; per-chat state lives in the sessions repository.
type Handler struct {
	diplomat  *Diplomat
	loc       *localization.Manager
	backend   *gateway.Gateway
	sessions  *repository.SessionsRepository
	payctx    *repository.PaymentContextRepository
	drafts    *repository.BroadcastRepository
	languages *repository.LanguageRepository
	engine    *broadcast.Engine
	features  *features.FeatureManager
	config    *configuration.Config
	metrics   *metrics.MetricsService
	log       *tracing.Logger

	callbacks map[string]func(ctx context.Context, event *InboundEvent, payload Payload)
}

func NewHandler(
	diplomat *Diplomat,
	loc *localization.Manager,
	backend *gateway.Gateway,
	sessions *repository.SessionsRepository,
	payctx *repository.PaymentContextRepository,
	drafts *repository.BroadcastRepository,
	languages *repository.LanguageRepository,
	engine *broadcast.Engine,
	features *features.FeatureManager,
	config *configuration.Config,
	metrics *metrics.MetricsService,
	log *tracing.Logger,
) *Handler {
	h := &Handler{
		diplomat:  diplomat,
		loc:       loc,
		backend:   backend,
		sessions:  sessions,
		payctx:    payctx,
		drafts:    drafts,
		languages: languages,
		engine:    engine,
		features:  features,
		config:    config,
		metrics:   metrics,
		log:       log,
	}

	h.callbacks = map[string]func(ctx context.Context, event *InboundEvent, payload Payload){
		KindSubscriptions: h.onSubscriptionsCallback,
		KindPayment:       h.onPaymentCallback,
		KindHistory:       h.onHistoryCallback,
		KindPaymentDetail: h.onPaymentDetailCallback,
		KindRenew:         h.onRenewCallback,
		KindNav:           h.onNavCallback,
		KindLanguage:      h.onLanguageCallback,
		KindAdmin:         h.onAdminCallback,
		KindAdminExtend:   h.onAdminExtendCallback,
		KindAdminService:  h.onAdminServiceCallback,
	}

	return h
}

// callbackGates lists the session states a callback kind is honored
// in. Kinds without an entry are navigational and work from any state.
// Idle stays allowed for payment buttons because webhook-driven status
// keyboards arrive after the session reset or expired.
var callbackGates = map[string][]int{
	KindPayment: {
		repository.StateIdle,
		repository.StateSubscriptionDetail,
		repository.StatePaymentMethodSelect,
		repository.StatePaymentPending,
	},
}

func callbackAllowed(kind string, state int) bool {
	allowed, gated := callbackGates[kind]
	if !gated {
		return true
	}
	return slices.Contains(allowed, state)
}

func (h *Handler) Handle(ctx context.Context, event *InboundEvent) {
	if event.Callback != nil {
		h.handleCallback(ctx, event)
		return
	}
	if event.Message != nil {
		h.handleMessage(ctx, event)
	}
}

func (h *Handler) handleCallback(ctx context.Context, event *InboundEvent) {
	payload, err := DecodePayload(event.Callback.Data)
	if err != nil {
		h.log.W("Dropping unusable callback",
			tracing.UserId, event.UserID,
			tracing.CallbackData, event.Callback.Data,
			tracing.InnerError, err,
		)
		if errors.Is(err, ErrStalePayload) {
			h.diplomat.AnswerCallback(event.Callback.CallbackID, h.loc.T(event.Language, "MsgUnknownInput"))
			return
		}
		h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
		return
	}

	handler, ok := h.callbacks[payload.Kind]
	if !ok {
		h.log.W("No handler for callback kind", tracing.CallbackKind, payload.Kind)
		h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
		return
	}

	if state := h.sessions.Get(ctx, event.UserID).State; !callbackAllowed(payload.Kind, state) {
		h.log.W("Callback rejected in current state",
			tracing.UserId, event.UserID,
			tracing.CallbackKind, payload.Kind,
			tracing.SessionState, repository.StateName(state),
		)
		h.diplomat.AnswerCallback(event.Callback.CallbackID, h.loc.T(event.Language, "MsgUnknownInput"))
		return
	}

	if h.metrics != nil {
		h.metrics.RecordCallbackHandled(payload.Kind)
	}
	handler(ctx, event, payload)
}

func (h *Handler) handleMessage(ctx context.Context, event *InboundEvent) {
	if event.IsCommand() {
		h.handleCommand(ctx, event)
		return
	}

	session := h.sessions.Get(ctx, event.UserID)

	switch session.State {
	case repository.StateAdminBroadcastText:
		if event.IsAdmin {
			h.onBroadcastText(ctx, event)
			return
		}
	case repository.StateAdminBroadcastSegment:
		if event.IsAdmin {
			h.onBroadcastSegment(ctx, event)
			return
		}
	case repository.StateAdminUserSearch:
		if event.IsAdmin {
			h.onUserSearchQuery(ctx, event)
			return
		}
	}

	h.handleMenuText(ctx, event)
}

// handleMenuText matches reply-keyboard buttons. The press arrives as
// plain text in whatever language the keyboard was rendered in, so
// every supported language is checked.
func (h *Handler) handleMenuText(ctx context.Context, event *InboundEvent) {
	text := strings.TrimSpace(event.Message.Text)

	switch {
	case h.matchesButton(text, "BtnMainSubscriptions"):
		h.showSubscriptions(ctx, event, 1, 0)
	case h.matchesButton(text, "BtnMainHistory"):
		h.showHistory(ctx, event, 1, 0)
	case h.matchesButton(text, "BtnMainLanguage"):
		h.showLanguageSelect(ctx, event)
	case h.matchesButton(text, "BtnMainFAQ"):
		h.showFAQ(ctx, event, 0)
	default:
		h.diplomat.SendText(event.ChatID, h.loc.T(event.Language, "MsgUnknownInput"))
	}
}

func (h *Handler) matchesButton(text, messageID string) bool {
	for _, lang := range h.loc.Supported() {
		if text == h.loc.T(lang, messageID) {
			return true
		}
	}
	return false
}

func (h *Handler) handleCommand(ctx context.Context, event *InboundEvent) {
	command := event.Message.Command
	if h.metrics != nil {
		h.metrics.RecordCommandUsed(command)
	}

	h.log.D("Handling command",
		tracing.UserId, event.UserID,
		tracing.CommandIssued, command,
	)

	switch command {
	case "start":
		h.onStart(ctx, event)
	case "menu":
		h.showMainMenu(ctx, event)
	case "lang":
		h.showLanguageSelect(ctx, event)
	case "faq", "help":
		h.showFAQ(ctx, event, 0)
	case "admin":
		h.requireAdmin(ctx, event, h.showAdminMenu)
	case "admin_user":
		h.requireAdmin(ctx, event, h.onAdminUserCommand)
	case "admin_extend":
		h.requireAdmin(ctx, event, h.onAdminExtendCommand)
	case "admin_create_sub":
		h.requireAdmin(ctx, event, h.onAdminCreateSubCommand)
	case "admin_service":
		h.requireAdmin(ctx, event, h.onAdminServiceCommand)
	case "admin_stats":
		h.requireAdmin(ctx, event, h.showAdminStats)
	default:
		h.diplomat.SendText(event.ChatID, h.loc.T(event.Language, "MsgUnknownInput"))
	}
}

func (h *Handler) requireAdmin(ctx context.Context, event *InboundEvent, next func(ctx context.Context, event *InboundEvent)) {
	if !event.IsAdmin {
		h.diplomat.SendText(event.ChatID, h.loc.T(event.Language, "MsgAdminDenied"))
		return
	}
	next(ctx, event)
}

// editOrSend honors the single-status-message contract: callbacks edit
// the message their button lives on, everything else sends fresh.
// Returns the id of the message now showing the content.
func (h *Handler) editOrSend(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) int {
	if messageID != 0 {
		if err := h.diplomat.EditText(chatID, messageID, text, &markup); err == nil {
			return messageID
		}
	}

	sentID, err := h.diplomat.SendWithKeyboard(chatID, text, markup)
	if err != nil {
		return messageID
	}
	return sentID
}

func (h *Handler) sendServiceUnavailable(event *InboundEvent) {
	text := h.loc.T(event.Language, "MsgServiceUnavailable")
	if event.Callback != nil {
		h.diplomat.AnswerCallbackAlert(event.Callback.CallbackID, text)
		return
	}
	h.diplomat.SendText(event.ChatID, text)
}

func (h *Handler) setState(ctx context.Context, event *InboundEvent, data repository.SessionData) {
	if err := h.sessions.Set(ctx, event.UserID, data); err == nil {
		h.log.D("Session state updated",
			tracing.UserId, event.UserID,
			tracing.SessionState, repository.StateName(data.State),
		)
	}
}
