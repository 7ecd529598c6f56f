package telegram

import (
	"clubify/sources/configuration"
	"clubify/sources/network"
	"clubify/sources/platform"
	"clubify/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func NewBotAPI(config *configuration.Config, client *network.TelegramHTTPClient, log *tracing.Logger) (*tgbotapi.BotAPI, error) {
	if err := platform.ValidateTelegramBotToken(config.Telegram.BotToken); err != nil {
		return nil, err
	}

	endpoint := config.Telegram.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(config.Telegram.BotToken, endpoint, client.Client)
	if err != nil {
		log.E("Failed to initialize Bot API client", tracing.InnerError, err)
		return nil, err
	}

	log.I("Bot API client initialized", "bot_username", bot.Self.UserName)
	return bot, nil
}
