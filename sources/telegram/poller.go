package telegram

import (
	"context"

	"clubify/sources/configuration"
	"clubify/sources/platform"
	"clubify/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Poller long-polls Telegram for updates and feeds them through the
// pipeline into the handler.
type Poller struct {
	bot      *tgbotapi.BotAPI
	pipeline *Pipeline
	handler  *Handler
	config   *configuration.Config
	log      *tracing.Logger
}

func NewPoller(bot *tgbotapi.BotAPI, pipeline *Pipeline, handler *Handler, config *configuration.Config, log *tracing.Logger) *Poller {
	return &Poller{bot: bot, pipeline: pipeline, handler: handler, config: config, log: log}
}

func (p *Poller) Run(ctx context.Context) {
	request := tgbotapi.NewUpdate(0)
	request.Timeout = p.config.Telegram.PollerTimeout
	request.AllowedUpdates = p.config.Telegram.AllowedUpdates

	updates := p.bot.GetUpdatesChan(request)
	p.log.I("Update poller started", "timeout", request.Timeout)

	for {
		select {
		case <-ctx.Done():
			p.log.I("Update poller stopping")
			return
		case update, ok := <-updates:
			if !ok {
				p.log.I("Update channel closed")
				return
			}
			if event := buildEvent(update); event != nil {
				go p.dispatch(ctx, event)
			}
		}
	}
}

func (p *Poller) Stop() {
	p.bot.StopReceivingUpdates()
}

func (p *Poller) dispatch(ctx context.Context, event *InboundEvent) {
	defer func() {
		if r := recover(); r != nil {
			p.log.E("Recovered from handler panic", tracing.UserId, event.UserID, "panic", r)
		}
	}()

	handleCtx, cancel := platform.ContextTimeout(ctx)
	defer cancel()

	if !p.pipeline.Run(handleCtx, event) {
		return
	}
	p.handler.Handle(handleCtx, event)
}

func buildEvent(update tgbotapi.Update) *InboundEvent {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return &InboundEvent{
			UserID: update.Message.From.ID,
			ChatID: update.Message.Chat.ID,
			Message: &MessageEvent{
				MessageID: update.Message.MessageID,
				Text:      update.Message.Text,
				Command:   update.Message.Command(),
				Args:      update.Message.CommandArguments(),
				Username:  update.Message.From.UserName,
				FirstName: update.Message.From.FirstName,
			},
		}
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return &InboundEvent{
			UserID: update.CallbackQuery.From.ID,
			ChatID: update.CallbackQuery.Message.Chat.ID,
			Callback: &CallbackEvent{
				CallbackID: update.CallbackQuery.ID,
				MessageID:  update.CallbackQuery.Message.MessageID,
				Data:       update.CallbackQuery.Data,
			},
		}
	default:
		return nil
	}
}
