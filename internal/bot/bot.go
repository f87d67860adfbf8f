package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/weatherhelper/weatherbot/internal/bot/handlers"
	"github.com/weatherhelper/weatherbot/internal/logger"
)

// Bot owns the Telegram connection and the long-polling loop. All
// per-update logic lives in the handlers package.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *handlers.UpdateHandler
}

// NewBot authorizes with Telegram and wires the update handler.
func NewBot(token string, deps handlers.Dependencies) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("bot authorized", "username", api.Self.UserName)
	return &Bot{
		api:     api,
		handler: handlers.NewUpdateHandler(api, deps),
	}, nil
}

// API exposes the underlying client for components that send messages
// outside the update loop, such as the daily push job.
func (b *Bot) API() *tgbotapi.BotAPI {
	return b.api
}

// Start long-polls for updates until the context is canceled. Handler
// errors are logged and never stop the loop; each update already
// reported its own failure to the user where one applies.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info("bot is now listening for updates")

	for {
		select {
		case <-ctx.Done():
			logger.Info("bot is shutting down")
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if err := b.handler.Handle(ctx, update); err != nil {
				logger.Error("error handling update", "error", err)
			}
		}
	}
}
