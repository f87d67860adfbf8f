package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
	"github.com/weatherhelper/weatherbot/internal/bot/prompt"
	"github.com/weatherhelper/weatherbot/internal/database"
	"github.com/weatherhelper/weatherbot/internal/i18n"
)

// ReplyHandler drives Flow C forward when the user replies to one of
// the bot's tagged prompts. Which step the reply belongs to comes from
// the decoded prompt header alone.
type ReplyHandler struct {
	api  Sender
	deps Dependencies
}

// NewReplyHandler creates a new reply handler
func NewReplyHandler(api Sender, deps Dependencies) *ReplyHandler {
	return &ReplyHandler{api: api, deps: deps}
}

// Handle processes a reply to a decoded prompt
func (h *ReplyHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *database.User, p prompt.Prompt) error {
	switch p.Kind {
	case prompt.KindAddCity:
		return resolveCityQuery(ctx, h.api, h.deps, message, user, true)
	case prompt.KindAddTime:
		return h.handleTimeReply(ctx, message, user, p)
	default:
		return nil
	}
}

// handleTimeReply completes the two-phase subscription: coordinates
// come from the prompt header, the time from the reply text. A bad
// time reports an error without touching the store.
func (h *ReplyHandler) handleTimeReply(ctx context.Context, message *tgbotapi.Message, user *database.User, p prompt.Prompt) error {
	chatID := message.Chat.ID

	sub, err := h.deps.SubscriptionSvc.Complete(ctx, chatID, p.Coords, strings.TrimSpace(message.Text))
	if err != nil {
		if apperrors.IsValidation(err) {
			return sendText(h.api, chatID, i18n.T(user.Language, i18n.KeyInvalidTime))
		}
		return sendGenericError(h.api, chatID, user.Language, err, "failed to complete subscription")
	}

	city := sub.City
	if sub.Country != "" {
		city = fmt.Sprintf("%s, %s", sub.City, sub.Country)
	}
	msg := tgbotapi.NewMessage(chatID, i18n.Tf(user.Language, i18n.KeySubCreated, city, *sub.NotifyAt))
	_, err = h.api.Send(msg)
	return err
}
