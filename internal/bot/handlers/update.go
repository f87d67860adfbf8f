package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/weatherhelper/weatherbot/internal/bot/prompt"
	"github.com/weatherhelper/weatherbot/internal/logger"
)

// UpdateHandler classifies each incoming update and drives the flow it
// belongs to. No in-memory conversation state is kept: every event
// reconstructs what it needs from the stores, the callback token, or
// the text of the message it relates to.
type UpdateHandler struct {
	api             Sender
	deps            Dependencies
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
	replyHandler    *ReplyHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(api Sender, deps Dependencies) *UpdateHandler {
	return &UpdateHandler{
		api:             api,
		deps:            deps,
		callbackHandler: NewCallbackHandler(api, deps),
		commandHandler:  NewCommandHandler(api, deps),
		textHandler:     NewTextHandler(api, deps),
		replyHandler:    NewReplyHandler(api, deps),
	}
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil && update.CallbackQuery == nil {
		return nil
	}

	var from *tgbotapi.User
	if update.Message != nil {
		from = update.Message.From
	} else {
		from = update.CallbackQuery.From
		if update.CallbackQuery.Message == nil {
			logger.Warn("callback query carries no message, ignoring")
			return nil
		}
	}
	if from == nil {
		return nil
	}

	user, err := h.deps.UserService.RegisterUser(ctx, from.ID, from.UserName, from.FirstName, from.LastName, from.LanguageCode)
	if err != nil {
		logger.Error("failed to register user", "error", err, "telegram_id", from.ID)
		return fmt.Errorf("failed to register user: %w", err)
	}

	if update.CallbackQuery != nil {
		return h.callbackHandler.Handle(ctx, update.CallbackQuery, user)
	}

	message := update.Message
	if message.IsCommand() {
		return h.commandHandler.Handle(ctx, message, user)
	}

	// A reply to one of our tagged prompts belongs to the subscription
	// flow; the header decode fails closed for everything else.
	if message.ReplyToMessage != nil {
		if p, ok := prompt.DecodeHeader(message.ReplyToMessage.Text); ok {
			return h.replyHandler.Handle(ctx, message, user, p)
		}
	}

	if message.Text != "" {
		return h.textHandler.Handle(ctx, message, user)
	}

	return nil
}
