package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clubify/sources/broadcast"
	"clubify/sources/features"
	"clubify/sources/gateway"
	"clubify/sources/platform"
	"clubify/sources/repository"
	"clubify/sources/texting/format"
	"clubify/sources/tracing"

	"github.com/alecthomas/kong"
)

func (h *Handler) showAdminMenu(ctx context.Context, event *InboundEvent) {
	h.diplomat.SendWithKeyboard(event.ChatID,
		h.loc.T(event.Language, "MsgAdminMenu"),
		AdminMenuKeyboard(h.loc, event.Language),
	)
	h.setState(ctx, event, repository.SessionData{State: repository.StateAdminMain})
}

func (h *Handler) onAdminCallback(ctx context.Context, event *InboundEvent, payload Payload) {
	if !event.IsAdmin {
		h.diplomat.AnswerCallbackAlert(event.Callback.CallbackID,
			h.loc.T(event.Language, "MsgAdminDenied"))
		return
	}

	switch payload.Get("a") {
	case "broadcast":
		h.startBroadcast(ctx, event)
	case "stats":
		h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
		h.showAdminStats(ctx, event)
	case "usearch":
		h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
		h.diplomat.EditText(event.ChatID, event.Callback.MessageID,
			h.loc.T(event.Language, "MsgAdminUserAskQuery"), nil)
		h.setState(ctx, event, repository.SessionData{State: repository.StateAdminUserSearch})
	case "bconfirm", "bcancel":
		// Confirm buttons outlive the preview step; a press from any
		// other state is a stale keyboard.
		if h.sessions.Get(ctx, event.UserID).State != repository.StateAdminBroadcastPreview {
			h.diplomat.AnswerCallbackAlert(event.Callback.CallbackID,
				h.loc.T(event.Language, "MsgBroadcastDraftExpired"))
			return
		}
		if payload.Get("a") == "bconfirm" {
			h.onConfirmBroadcast(ctx, event)
			return
		}
		h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
		h.onCancelBroadcast(ctx, event)
	}
}

func (h *Handler) startBroadcast(ctx context.Context, event *InboundEvent) {
	if !h.features.IsEnabledDefault(features.FeatureBroadcastEnabled, true) {
		h.diplomat.AnswerCallbackAlert(event.Callback.CallbackID,
			h.loc.T(event.Language, "MsgBroadcastDisabled"))
		return
	}

	h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
	h.diplomat.EditText(event.ChatID, event.Callback.MessageID,
		h.loc.T(event.Language, "MsgBroadcastAskText"), nil)
	h.setState(ctx, event, repository.SessionData{State: repository.StateAdminBroadcastText})
}

func (h *Handler) onBroadcastText(ctx context.Context, event *InboundEvent) {
	if err := h.drafts.SetDraft(ctx, event.UserID, repository.BroadcastDraft{
		Text: event.Message.Text,
	}); err != nil {
		h.sendServiceUnavailable(event)
		return
	}

	h.diplomat.SendText(event.ChatID, h.loc.T(event.Language, "MsgBroadcastAskSegment"))
	h.setState(ctx, event, repository.SessionData{State: repository.StateAdminBroadcastSegment})
}

func (h *Handler) onBroadcastSegment(ctx context.Context, event *InboundEvent) {
	segment, err := broadcast.ParseSegment(event.Message.Text)
	if err != nil {
		h.diplomat.SendText(event.ChatID, h.loc.T(event.Language, "MsgBroadcastInvalidSegment"))
		return
	}

	draft, err := h.drafts.GetDraft(ctx, event.UserID)
	if err != nil {
		h.sendServiceUnavailable(event)
		return
	}
	if draft == nil {
		h.diplomat.SendText(event.ChatID, h.loc.T(event.Language, "MsgBroadcastDraftExpired"))
		h.setState(ctx, event, repository.SessionData{State: repository.StateAdminMain})
		return
	}

	draft.Segment = segment.String()
	if err := h.drafts.SetDraft(ctx, event.UserID, *draft); err != nil {
		h.sendServiceUnavailable(event)
		return
	}

	preview := h.loc.Td(event.Language, "MsgBroadcastPreview", map[string]any{
		"Segment": draft.Segment,
		"Text":    draft.Text,
	})
	h.diplomat.SendWithKeyboard(event.ChatID, preview, BroadcastPreviewKeyboard(h.loc, event.Language))
	h.setState(ctx, event, repository.SessionData{State: repository.StateAdminBroadcastPreview})
}

func (h *Handler) onConfirmBroadcast(ctx context.Context, event *InboundEvent) {
	draft, err := h.drafts.GetDraft(ctx, event.UserID)
	if err != nil {
		h.diplomat.AnswerCallbackAlert(event.Callback.CallbackID,
			h.loc.T(event.Language, "MsgServiceUnavailable"))
		return
	}
	if draft == nil || draft.Segment == "" {
		h.diplomat.AnswerCallbackAlert(event.Callback.CallbackID,
			h.loc.T(event.Language, "MsgBroadcastDraftExpired"))
		h.setState(ctx, event, repository.SessionData{State: repository.StateAdminMain})
		return
	}

	segment, err := broadcast.ParseSegment(draft.Segment)
	if err != nil {
		h.diplomat.AnswerCallbackAlert(event.Callback.CallbackID,
			h.loc.T(event.Language, "MsgBroadcastInvalidSegment"))
		return
	}

	h.diplomat.AnswerCallback(event.Callback.CallbackID, "")
	h.diplomat.EditText(event.ChatID, event.Callback.MessageID,
		h.loc.T(event.Language, "MsgBroadcastStarted"), nil)

	h.drafts.ClearDraft(ctx, event.UserID)
	h.setState(ctx, event, repository.SessionData{State: repository.StateAdminMain})

	// The run outlives the inbound update on purpose: a large segment
	// takes minutes at the configured delivery rate.
	adminChat := event.ChatID
	lang := event.Language
	text := draft.Text
	go func() {
		report, err := h.engine.Run(context.Background(), segment, text)
		if err != nil {
			h.log.E("Broadcast aborted", tracing.Segment, segment.String(), tracing.InnerError, err)
		}

		h.diplomat.SendText(adminChat, h.loc.Td(lang, "MsgBroadcastReport", map[string]any{
			"Delivered": report.Delivered,
			"Failed":    report.Failed,
			"Skipped":   report.Skipped,
		}))
	}()
}

func (h *Handler) onCancelBroadcast(ctx context.Context, event *InboundEvent) {
	h.drafts.ClearDraft(ctx, event.UserID)
	h.diplomat.EditText(event.ChatID, event.Callback.MessageID,
		h.loc.T(event.Language, "MsgBroadcastCancelled"), nil)
	h.setState(ctx, event, repository.SessionData{State: repository.StateAdminMain})
}

func (h *Handler) showAdminStats(ctx context.Context, event *InboundEvent) {
	stats, err := h.backend.GetAdminStats(ctx)
	if err != nil {
		h.sendServiceUnavailable(event)
		return
	}

	text := h.loc.Td(event.Language, "MsgAdminStats", map[string]any{
		"TotalUsers":          stats.TotalUsers,
		"ActiveSubscriptions": stats.ActiveSubscriptions,
		"PaymentsToday":       stats.PaymentsToday,
		"NewUsersToday":       stats.NewUsersToday,
		"Version":             platform.GetAppVersion(),
		"Uptime":              time.Since(platform.GetAppStartTime()).Round(time.Second).String(),
	})
	h.diplomat.SendText(event.ChatID, text)
}

func (h *Handler) onUserSearchQuery(ctx context.Context, event *InboundEvent) {
	h.adminUserLookup(ctx, event, event.Message.Text)
	h.setState(ctx, event, repository.SessionData{State: repository.StateAdminMain})
}

func (h *Handler) adminUserLookup(ctx context.Context, event *InboundEvent, query string) {
	query = strings.TrimPrefix(strings.TrimSpace(query), "@")

	user, err := h.backend.SearchUser(ctx, query)
	if err != nil {
		if gateway.IsNotFound(err) {
			h.diplomat.SendText(event.ChatID, h.loc.T(event.Language, "MsgAdminUserNotFound"))
			return
		}
		h.sendServiceUnavailable(event)
		return
	}

	var subs strings.Builder
	for _, sub := range user.Subscriptions {
		fmt.Fprintf(&subs, "· %s — %s, %s\n",
			sub.ServiceName,
			subscriptionStatus(h.loc, event.Language, sub.Status),
			format.Date(sub.UntilDate, event.Language),
		)
	}
	if subs.Len() == 0 {
		subs.WriteString("—")
	}

	card := h.loc.Td(event.Language, "MsgAdminUserCard", map[string]any{
		"TgID":      user.TelegramID,
		"Username":  user.Username,
		"Name":      user.FirstName,
		"Language":  user.Language,
		"CreatedAt": format.Date(user.CreatedAt, event.Language),
		"Subs":      strings.TrimRight(subs.String(), "\n"),
	})
	h.diplomat.SendText(event.ChatID, card)
}

// parseCommandArgs binds whitespace-separated command arguments to a
// kong positional-argument struct.
func parseCommandArgs(target any, raw string) error {
	parser, err := kong.New(target, kong.Exit(func(int) {}))
	if err != nil {
		return err
	}
	_, err = parser.Parse(strings.Fields(raw))
	return err
}

func (h *Handler) sendUsage(event *InboundEvent, usage string) {
	h.diplomat.SendText(event.ChatID, h.loc.Td(event.Language, "MsgAdminUsage", map[string]any{
		"Usage": usage,
	}))
}

func (h *Handler) onAdminUserCommand(ctx context.Context, event *InboundEvent) {
	var args struct {
		Query string `arg:"" name:"query"`
	}
	if err := parseCommandArgs(&args, event.Message.Args); err != nil {
		h.diplomat.SendText(event.ChatID, h.loc.T(event.Language, "MsgAdminUserAskQuery"))
		h.setState(ctx, event, repository.SessionData{State: repository.StateAdminUserSearch})
		return
	}
	h.adminUserLookup(ctx, event, args.Query)
}

func (h *Handler) onAdminExtendCommand(ctx context.Context, event *InboundEvent) {
	var args struct {
		TgID  int64 `arg:"" name:"tg_id"`
		SubID int64 `arg:"" name:"subscription_id"`
		Days  int   `arg:"" name:"days"`
	}
	if err := parseCommandArgs(&args, event.Message.Args); err != nil {
		h.sendUsage(event, "/admin_extend <tg_id> <subscription_id> <days>")
		return
	}

	h.diplomat.SendWithKeyboard(event.ChatID,
		h.loc.Td(event.Language, "MsgAdminExtendConfirm", map[string]any{
			"TgID":           args.TgID,
			"SubscriptionID": args.SubID,
			"Days":           args.Days,
		}),
		AdminExtendConfirmKeyboard(h.loc, event.Language, args.TgID, args.SubID, args.Days),
	)
}

func (h *Handler) onAdminExtendCallback(ctx context.Context, event *InboundEvent, payload Payload) {
	if !event.IsAdmin {
		h.diplomat.AnswerCallbackAlert(event.Callback.CallbackID,
			h.loc.T(event.Language, "MsgAdminDenied"))
		return
	}

	h.diplomat.AnswerCallback(event.Callback.CallbackID, "")

	if payload.Get("a") != "ok" {
		h.diplomat.EditText(event.ChatID, event.Callback.MessageID,
			h.loc.T(event.Language, "MsgAdminCancelled"), nil)
		return
	}

	sub, err := h.backend.ExtendSubscription(ctx, gateway.ExtendSubscriptionRequest{
		TelegramID:     payload.GetInt64("t"),
		SubscriptionID: payload.GetInt64("s"),
		Days:           payload.GetInt("d"),
	})
	if err != nil {
		if gateway.IsNotFound(err) {
			h.diplomat.EditText(event.ChatID, event.Callback.MessageID,
				h.loc.T(event.Language, "MsgAdminUserNotFound"), nil)
			return
		}
		h.sendServiceUnavailable(event)
		return
	}

	h.diplomat.EditText(event.ChatID, event.Callback.MessageID,
		h.loc.Td(event.Language, "MsgAdminExtended", map[string]any{
			"SubscriptionID": sub.ID,
			"UntilDate":      format.Date(sub.UntilDate, event.Language),
		}), nil)
}

func (h *Handler) onAdminCreateSubCommand(ctx context.Context, event *InboundEvent) {
	var args struct {
		TgID      int64 `arg:"" name:"tg_id"`
		ServiceID int64 `arg:"" name:"service_id"`
		Days      int   `arg:"" name:"days"`
	}
	if err := parseCommandArgs(&args, event.Message.Args); err != nil {
		h.sendUsage(event, "/admin_create_sub <tg_id> <service_id> <days>")
		return
	}

	sub, err := h.backend.CreateSubscription(ctx, gateway.CreateSubscriptionRequest{
		TelegramID: args.TgID,
		ServiceID:  args.ServiceID,
		Days:       args.Days,
	})
	if err != nil {
		if gateway.IsNotFound(err) {
			h.diplomat.SendText(event.ChatID, h.loc.T(event.Language, "MsgAdminUserNotFound"))
			return
		}
		h.sendServiceUnavailable(event)
		return
	}

	h.diplomat.SendText(event.ChatID, h.loc.Td(event.Language, "MsgAdminSubscriptionCreated", map[string]any{
		"SubscriptionID": sub.ID,
	}))
}

// onAdminServiceCommand walks the admin from a service list to an
// action. Arguments are optional shortcuts past the menus.
func (h *Handler) onAdminServiceCommand(ctx context.Context, event *InboundEvent) {
	var args struct {
		ServiceID int64  `arg:"" name:"service_id" optional:""`
		Action    string `arg:"" name:"action" optional:"" enum:",start,pause,resume"`
	}
	if err := parseCommandArgs(&args, event.Message.Args); err != nil {
		h.sendUsage(event, "/admin_service [service_id] [start|pause|resume]")
		return
	}

	switch {
	case args.ServiceID == 0:
		services, err := h.backend.GetServices(ctx)
		if err != nil {
			h.sendServiceUnavailable(event)
			return
		}
		h.diplomat.SendWithKeyboard(event.ChatID,
			h.loc.T(event.Language, "MsgAdminServicesTitle"),
			AdminServicesKeyboard(services),
		)
	case args.Action == "":
		h.showServiceActions(ctx, event, args.ServiceID, 0)
	default:
		h.applyServiceAction(ctx, event, args.ServiceID, args.Action, 0)
	}
}

func (h *Handler) onAdminServiceCallback(ctx context.Context, event *InboundEvent, payload Payload) {
	if !event.IsAdmin {
		h.diplomat.AnswerCallbackAlert(event.Callback.CallbackID,
			h.loc.T(event.Language, "MsgAdminDenied"))
		return
	}

	h.diplomat.AnswerCallback(event.Callback.CallbackID, "")

	serviceID := payload.GetInt64("s")
	if action := payload.Get("a"); action == "pick" {
		h.showServiceActions(ctx, event, serviceID, event.Callback.MessageID)
	} else {
		h.applyServiceAction(ctx, event, serviceID, action, event.Callback.MessageID)
	}
}

func (h *Handler) showServiceActions(ctx context.Context, event *InboundEvent, serviceID int64, messageID int) {
	service, err := h.backend.GetService(ctx, serviceID)
	if err != nil {
		if gateway.IsNotFound(err) {
			h.diplomat.SendText(event.ChatID, h.loc.T(event.Language, "MsgAdminUserNotFound"))
			return
		}
		h.sendServiceUnavailable(event)
		return
	}

	h.editOrSend(event.ChatID, messageID,
		h.loc.Td(event.Language, "MsgAdminServiceChooseAction", map[string]any{
			"Name":      service.Name,
			"ServiceID": service.ID,
		}),
		AdminServiceActionsKeyboard(h.loc, event.Language, serviceID),
	)
}

func (h *Handler) applyServiceAction(ctx context.Context, event *InboundEvent, serviceID int64, action string, messageID int) {
	if err := h.backend.SetServiceState(ctx, serviceID, action); err != nil {
		if gateway.IsNotFound(err) {
			h.diplomat.SendText(event.ChatID, h.loc.T(event.Language, "MsgAdminUserNotFound"))
			return
		}
		h.sendServiceUnavailable(event)
		return
	}

	result := h.loc.Td(event.Language, "MsgAdminServiceUpdated", map[string]any{
		"ServiceID": serviceID,
		"Action":    action,
	})
	if messageID != 0 {
		h.diplomat.EditText(event.ChatID, messageID, result, nil)
		return
	}
	h.diplomat.SendText(event.ChatID, result)
}
