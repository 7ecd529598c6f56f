package telegram

import (
	"fmt"

	"clubify/sources/gateway"
	"clubify/sources/localization"
	"clubify/sources/texting/format"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var languageNameIDs = map[string]string{
	"en": "LangNameEn",
	"ru": "LangNameRu",
}

func MainMenuKeyboard(loc *localization.Manager, lang string) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(loc.T(lang, "BtnMainSubscriptions")),
			tgbotapi.NewKeyboardButton(loc.T(lang, "BtnMainHistory")),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(loc.T(lang, "BtnMainLanguage")),
			tgbotapi.NewKeyboardButton(loc.T(lang, "BtnMainFAQ")),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func mainMenuRow(loc *localization.Manager, lang string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(
			loc.T(lang, "BtnMainMenu"),
			NewPayload(KindNav).With("a", "menu").Encode(),
		),
	)
}

func paginationRow(loc *localization.Manager, lang, kind string, page, pages int) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	if page > 1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			loc.T(lang, "BtnPrevPage"), NewPayload(kind).With("a", "list").WithInt("p", page-1).Encode(),
		))
	}
	if page < pages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			loc.T(lang, "BtnNextPage"), NewPayload(kind).With("a", "list").WithInt("p", page+1).Encode(),
		))
	}
	return row
}

func SubscriptionsKeyboard(loc *localization.Manager, lang string, subs []gateway.Subscription, page, pages int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, sub := range subs {
		label := fmt.Sprintf("%s · %s", sub.ServiceName, subscriptionStatus(loc, lang, sub.Status))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				label,
				NewPayload(KindSubscriptions).With("a", "detail").WithInt64("id", sub.ID).WithInt("p", page).Encode(),
			),
		))
	}

	if row := paginationRow(loc, lang, KindSubscriptions, page, pages); len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, mainMenuRow(loc, lang))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func SubscriptionDetailKeyboard(loc *localization.Manager, lang string, subID int64, page int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnPay"),
				NewPayload(KindPayment).With("a", "options").WithInt64("id", subID).Encode(),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnBack"),
				NewPayload(KindSubscriptions).With("a", "list").WithInt("p", page).Encode(),
			),
		),
		mainMenuRow(loc, lang),
	)
}

// PaymentMethodsKeyboard offers every provider and plan combination.
// The composite id keeps the whole choice in one callback.
func PaymentMethodsKeyboard(loc *localization.Manager, lang string, subID int64, options *gateway.PaymentOptions) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, provider := range options.Providers {
		for _, plan := range options.Plans {
			label := fmt.Sprintf("%s — %s", provider.Title, format.Money(plan.Amount, plan.Currency))
			composite := fmt.Sprintf("%d:%s:%s", subID, provider.Code, plan.Code)
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					label,
					NewPayload(KindPayment).With("a", "create").With("id", composite).Encode(),
				),
			))
		}
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(
			loc.T(lang, "BtnBack"),
			NewPayload(KindSubscriptions).With("a", "detail").WithInt64("id", subID).WithInt("p", 1).Encode(),
		),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func PaymentWaitingKeyboard(loc *localization.Manager, lang, payLink, paymentID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(loc.T(lang, "BtnPayLink"), payLink),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnPaymentCheck"),
				NewPayload(KindPayment).With("a", "check").With("pid", paymentID).Encode(),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnPaymentCancel"),
				NewPayload(KindPayment).With("a", "cancel").With("pid", paymentID).Encode(),
			),
		),
	)
}

// PaymentPendingKeyboard is the reduced waiting keyboard used for
// status edits when the pay link could not be recovered.
func PaymentPendingKeyboard(loc *localization.Manager, lang, paymentID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnPaymentCheck"),
				NewPayload(KindPayment).With("a", "check").With("pid", paymentID).Encode(),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnPaymentCancel"),
				NewPayload(KindPayment).With("a", "cancel").With("pid", paymentID).Encode(),
			),
		),
	)
}

// PaymentFailedKeyboard sends the user back to the method selection
// for another attempt.
func PaymentFailedKeyboard(loc *localization.Manager, lang string, subID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnPaymentChangeMethod"),
				NewPayload(KindPayment).With("a", "options").WithInt64("id", subID).Encode(),
			),
		),
		mainMenuRow(loc, lang),
	)
}

func HistoryKeyboard(loc *localization.Manager, lang string, payments []gateway.Payment, page, pages int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, payment := range payments {
		label := fmt.Sprintf("%s · %s", format.Money(payment.Amount, payment.Currency), format.Date(payment.Date, lang))
		if payment.Description != "" {
			label = fmt.Sprintf("%s · %s", label, format.Truncate(payment.Description, 16))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				label,
				NewPayload(KindPaymentDetail).With("id", payment.EffectiveID()).WithInt("p", page).Encode(),
			),
		))
	}

	if row := paginationRow(loc, lang, KindHistory, page, pages); len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, mainMenuRow(loc, lang))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func PaymentDetailKeyboard(loc *localization.Manager, lang string, page int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnBack"),
				NewPayload(KindHistory).With("a", "list").WithInt("p", page).Encode(),
			),
		),
		mainMenuRow(loc, lang),
	)
}

func LanguageKeyboard(loc *localization.Manager) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, lang := range []string{"ru", "en"} {
		nameID, ok := languageNameIDs[lang]
		label := lang
		if ok {
			label = loc.T(lang, nameID)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				label,
				NewPayload(KindLanguage).With("l", lang).Encode(),
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func FAQKeyboard(loc *localization.Manager, lang, supportLink string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnTerms"),
				NewPayload(KindNav).With("a", "terms").Encode(),
			),
			tgbotapi.NewInlineKeyboardButtonURL(loc.T(lang, "BtnSupport"), supportLink),
		),
		mainMenuRow(loc, lang),
	)
}

// RenewKeyboard goes under renewal nudges delivered by the
// notifications webhook.
func RenewKeyboard(loc *localization.Manager, lang string, subID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnRenew"),
				NewPayload(KindRenew).WithInt64("id", subID).Encode(),
			),
		),
	)
}

func AdminMenuKeyboard(loc *localization.Manager, lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnAdminBroadcast"),
				NewPayload(KindAdmin).With("a", "broadcast").Encode(),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnAdminStats"),
				NewPayload(KindAdmin).With("a", "stats").Encode(),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnAdminUserSearch"),
				NewPayload(KindAdmin).With("a", "usearch").Encode(),
			),
		),
	)
}

func BroadcastPreviewKeyboard(loc *localization.Manager, lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnBroadcastConfirm"),
				NewPayload(KindAdmin).With("a", "bconfirm").Encode(),
			),
			tgbotapi.NewInlineKeyboardButtonData(
				loc.T(lang, "BtnBroadcastCancel"),
				NewPayload(KindAdmin).With("a", "bcancel").Encode(),
			),
		),
	)
}

func AdminExtendConfirmKeyboard(loc *localization.Manager, lang string, tgID, subID int64, days int) tgbotapi.InlineKeyboardMarkup {
	base := NewPayload(KindAdminExtend).WithInt64("t", tgID).WithInt64("s", subID).WithInt("d", days)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(loc.T(lang, "BtnConfirm"), base.With("a", "ok").Encode()),
			tgbotapi.NewInlineKeyboardButtonData(loc.T(lang, "BtnCancel"), base.With("a", "no").Encode()),
		),
	)
}

func AdminServicesKeyboard(services []gateway.Service) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, service := range services {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				service.Name,
				NewPayload(KindAdminService).With("a", "pick").WithInt64("s", service.ID).Encode(),
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func AdminServiceActionsKeyboard(loc *localization.Manager, lang string, serviceID int64) tgbotapi.InlineKeyboardMarkup {
	action := func(name, label string) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(
			loc.T(lang, label),
			NewPayload(KindAdminService).With("a", name).WithInt64("s", serviceID).Encode(),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			action("start", "BtnServiceStart"),
			action("pause", "BtnServicePause"),
			action("resume", "BtnServiceResume"),
		),
	)
}

func subscriptionStatus(loc *localization.Manager, lang, status string) string {
	switch status {
	case "active":
		return loc.T(lang, "StatusActive")
	case "expired":
		return loc.T(lang, "StatusExpired")
	case "paused":
		return loc.T(lang, "StatusPaused")
	default:
		return loc.T(lang, "StatusUnknown")
	}
}

func paymentStatus(loc *localization.Manager, lang, status string) string {
	switch status {
	case "paid":
		return loc.T(lang, "PaymentStatusPaid")
	case "created", "pending":
		return loc.T(lang, "PaymentStatusPending")
	case "failed":
		return loc.T(lang, "PaymentStatusFailed")
	case "cancelled":
		return loc.T(lang, "PaymentStatusCancelled")
	default:
		return status
	}
}
