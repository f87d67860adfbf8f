package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
	"github.com/weatherhelper/weatherbot/internal/bot/keyboards"
	"github.com/weatherhelper/weatherbot/internal/cache"
	"github.com/weatherhelper/weatherbot/internal/database"
	"github.com/weatherhelper/weatherbot/internal/i18n"
	"github.com/weatherhelper/weatherbot/internal/logger"
)

// TextHandler handles plain text messages: Flow A treats any
// non-command, non-reply text as a city name for a one-off lookup.
type TextHandler struct {
	api  Sender
	deps Dependencies
}

// NewTextHandler creates a new text handler
func NewTextHandler(api Sender, deps Dependencies) *TextHandler {
	return &TextHandler{api: api, deps: deps}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *database.User) error {
	return resolveCityQuery(ctx, h.api, h.deps, message, user, false)
}

// resolveCityQuery runs the shared geocoding step of Flows A and C:
// validate the text, geocode it, then either answer directly (one
// candidate) or persist a PendingDisambiguation and offer the choice.
func resolveCityQuery(ctx context.Context, api Sender, deps Dependencies, message *tgbotapi.Message, user *database.User, forSubscription bool) error {
	chatID := message.Chat.ID
	query := strings.TrimSpace(message.Text)

	candidates, err := deps.WeatherSvc.FindCities(ctx, query)
	if err != nil {
		if apperrors.IsValidation(err) {
			return sendText(api, chatID, i18n.T(user.Language, i18n.KeyInvalidCityName))
		}
		return sendGenericError(api, chatID, user.Language, err, "geocoding failed")
	}

	switch len(candidates) {
	case 0:
		return sendText(api, chatID, i18n.T(user.Language, i18n.KeyUnknownCity))
	case 1:
		if forSubscription {
			return startSubscription(ctx, api, deps, chatID, candidates[0], user)
		}
		return sendCurrentWeather(ctx, api, deps, chatID, candidates[0].Coords, user.Language)
	default:
		// The candidate list is sent as a reply to the user's message,
		// whose id keys the stored set; a selection press recovers the
		// key through the reply chain.
		pending := cache.PendingDisambiguation{
			Candidates:      candidates,
			ForSubscription: forSubscription,
		}
		if err := deps.Cache.PutDisambiguation(ctx, chatID, message.MessageID, pending); err != nil {
			return sendGenericError(api, chatID, user.Language, err, "failed to store disambiguation")
		}

		msg := tgbotapi.NewMessage(chatID, i18n.T(user.Language, i18n.KeyChooseCity))
		msg.ReplyToMessageID = message.MessageID
		msg.ReplyMarkup = keyboards.Candidates(candidates, forSubscription)
		if _, err := api.Send(msg); err != nil {
			return err
		}
		logger.Debug("stored disambiguation", "chat_id", chatID, "message_id", message.MessageID, "candidates", len(candidates))
		return nil
	}
}
