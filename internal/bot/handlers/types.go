package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/weatherhelper/weatherbot/internal/cache"
	"github.com/weatherhelper/weatherbot/internal/interfaces"
)

// Sender is the slice of the Telegram API the handlers use.
// *tgbotapi.BotAPI satisfies it; tests substitute a fake.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	UserService     interfaces.UserServiceInterface
	WeatherSvc      interfaces.WeatherServiceInterface
	SubscriptionSvc interfaces.SubscriptionServiceInterface
	Cache           cache.Store
}
