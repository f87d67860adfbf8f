package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/weatherhelper/weatherbot/internal/bot/keyboards"
	"github.com/weatherhelper/weatherbot/internal/bot/prompt"
	"github.com/weatherhelper/weatherbot/internal/bot/render"
	"github.com/weatherhelper/weatherbot/internal/database"
	"github.com/weatherhelper/weatherbot/internal/i18n"
	"github.com/weatherhelper/weatherbot/internal/logger"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	api  Sender
	deps Dependencies
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api Sender, deps Dependencies) *CommandHandler {
	return &CommandHandler{api: api, deps: deps}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *database.User) error {
	logger.Infof("Handling command %s from user %d", message.Command(), user.ID)

	switch message.Command() {
	case "start":
		return sendText(h.api, message.Chat.ID, i18n.T(user.Language, i18n.KeyStart))
	case "help":
		return sendText(h.api, message.Chat.ID, i18n.T(user.Language, i18n.KeyHelp))
	case "subscribe":
		return h.handleSubscribe(message.Chat.ID, user)
	case "subscriptions":
		return h.handleSubscriptions(ctx, message.Chat.ID, user)
	case "short":
		return h.handleVerbosity(ctx, message.Chat.ID, user, database.VerbosityShort)
	case "full":
		return h.handleVerbosity(ctx, message.Chat.ID, user, database.VerbosityFull)
	default:
		return sendText(h.api, message.Chat.ID, i18n.T(user.Language, i18n.KeyUnknownCommand))
	}
}

// handleSubscribe opens Flow C with the tagged, forced-reply city
// prompt. The reply is recognized by the prompt header, not by turn
// order.
func (h *CommandHandler) handleSubscribe(chatID int64, user *database.User) error {
	p := prompt.Prompt{Kind: prompt.KindAddCity}
	msg := tgbotapi.NewMessage(chatID, prompt.Compose(p, i18n.T(user.Language, i18n.KeyAddCityPrompt)))
	msg.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true}
	_, err := h.api.Send(msg)
	return err
}

// handleSubscriptions lists each subscription as its own message with
// a cancel button; the message text embeds everything cancellation
// needs.
func (h *CommandHandler) handleSubscriptions(ctx context.Context, chatID int64, user *database.User) error {
	subs, err := h.deps.SubscriptionSvc.List(ctx, chatID)
	if err != nil {
		return sendGenericError(h.api, chatID, user.Language, err, "failed to list subscriptions")
	}

	if len(subs) == 0 {
		return sendText(h.api, chatID, i18n.T(user.Language, i18n.KeySubsEmpty))
	}

	for _, sub := range subs {
		msg := tgbotapi.NewMessage(chatID, render.SubscriptionItem(sub, user.Language))
		msg.ReplyMarkup = keyboards.CancelSubscription(user.Language)
		if _, err := h.api.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (h *CommandHandler) handleVerbosity(ctx context.Context, chatID int64, user *database.User, verbosity string) error {
	if err := h.deps.UserService.SetVerbosity(ctx, user.ID, verbosity); err != nil {
		return sendGenericError(h.api, chatID, user.Language, err, "failed to update verbosity")
	}
	key := i18n.KeyVerbosityFull
	if verbosity == database.VerbosityShort {
		key = i18n.KeyVerbosityShort
	}
	return sendText(h.api, chatID, i18n.T(user.Language, key))
}
