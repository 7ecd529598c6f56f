package telegram

import (
	"context"
	"errors"

	"clubify/sources/broadcast"
	"clubify/sources/configuration"
	"clubify/sources/metrics"
	"clubify/sources/texting/transform"
	"clubify/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Diplomat is the single outbound surface to Telegram. Everything the
// bot says goes through it, which is where chunking, metrics and the
// edit-or-send fallback live.
type Diplomat struct {
	bot     *tgbotapi.BotAPI
	config  *configuration.Config
	log     *tracing.Logger
	metrics *metrics.MetricsService
}

func NewDiplomat(bot *tgbotapi.BotAPI, config *configuration.Config, log *tracing.Logger, metrics *metrics.MetricsService) *Diplomat {
	return &Diplomat{bot: bot, config: config, log: log, metrics: metrics}
}

// SendText sends plain text, split into chunks when it exceeds the
// configured size.
func (d *Diplomat) SendText(chatID int64, text string) error {
	for _, chunk := range transform.Chunks(text, d.config.Telegram.ChunkSize) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if _, err := d.bot.Send(msg); err != nil {
			d.recordSend(err)
			d.log.E("Failed to send message", tracing.ChatId, chatID, tracing.InnerError, err)
			return err
		}
		d.recordSend(nil)
	}
	return nil
}

// SendWithKeyboard sends one message with a markup and returns its
// message id, which callers persist for later edits.
func (d *Diplomat) SendWithKeyboard(chatID int64, text string, markup any) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup

	sent, err := d.bot.Send(msg)
	d.recordSend(err)
	if err != nil {
		d.log.E("Failed to send message with keyboard", tracing.ChatId, chatID, tracing.InnerError, err)
		return 0, err
	}
	return sent.MessageID, nil
}

// EditText edits a previously sent message in place.
func (d *Diplomat) EditText(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = markup

	if _, err := d.bot.Send(edit); err != nil {
		d.log.W("Failed to edit message",
			tracing.ChatId, chatID,
			tracing.MessageId, messageID,
			tracing.InnerError, err,
		)
		return err
	}
	return nil
}

func (d *Diplomat) AnswerCallback(callbackID, text string) {
	if _, err := d.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		d.log.W("Failed to answer callback", tracing.InnerError, err)
	}
}

func (d *Diplomat) AnswerCallbackAlert(callbackID, text string) {
	if _, err := d.bot.Request(tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		d.log.W("Failed to answer callback with alert", tracing.InnerError, err)
	}
}

// SendDocument uploads a local file with an optional caption.
func (d *Diplomat) SendDocument(chatID int64, path, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption

	_, err := d.bot.Send(doc)
	d.recordSend(err)
	if err != nil {
		d.log.W("Failed to send document", tracing.ChatId, chatID, "path", path, tracing.InnerError, err)
	}
	return err
}

// DeliverText implements broadcast delivery. A 403 from Telegram means
// the user blocked the bot, which the engine counts as skipped rather
// than failed.
func (d *Diplomat) DeliverText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := d.bot.Send(tgbotapi.NewMessage(chatID, text))
	d.recordSend(err)
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		return broadcast.ErrRecipientUnavailable
	}
	return err
}

func (d *Diplomat) recordSend(err error) {
	if d.metrics == nil {
		return
	}
	if err != nil {
		d.metrics.RecordMessageSent("error")
		return
	}
	d.metrics.RecordMessageSent("ok")
}
