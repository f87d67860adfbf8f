package handlers

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
	"github.com/weatherhelper/weatherbot/internal/bot/keyboards"
	"github.com/weatherhelper/weatherbot/internal/bot/render"
	"github.com/weatherhelper/weatherbot/internal/bot/token"
	"github.com/weatherhelper/weatherbot/internal/cache"
	"github.com/weatherhelper/weatherbot/internal/database"
	"github.com/weatherhelper/weatherbot/internal/i18n"
	"github.com/weatherhelper/weatherbot/internal/logger"
)

// CallbackHandler handles button presses. The callback token and the
// text of the message the button sits on are the only state a press
// carries; everything else is read back from the conversation cache.
type CallbackHandler struct {
	api  Sender
	deps Dependencies
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api Sender, deps Dependencies) *CallbackHandler {
	return &CallbackHandler{api: api, deps: deps}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, user *database.User) error {
	// Answer the callback query first to clear the loading state.
	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := h.api.Request(callback); err != nil {
		logger.Warn("failed to answer callback query", "error", err)
	}

	chatID := query.Message.Chat.ID

	tok, err := token.Decode(query.Data)
	if errors.Is(err, token.ErrUnrecognized) {
		// Stale or foreign button, e.g. pressed after a restart that
		// changed the token set. Expected; not user-visible.
		logger.Debug("ignoring unrecognized callback token", "data", query.Data, "chat_id", chatID)
		return nil
	}
	if err != nil {
		return sendGenericError(h.api, chatID, user.Language, err, "malformed callback token")
	}

	switch tok.Action {
	case token.ActionForecast:
		return h.handleForecast(ctx, query, user)
	case token.ActionChooseCity, token.ActionChooseCityForSub:
		return h.handleChooseCity(ctx, query, user, tok)
	case token.ActionForecastPage:
		return h.handleForecastPage(ctx, query, user, tok.Index)
	case token.ActionRemoveSub:
		return h.handleRemoveSubscription(ctx, query, user)
	default:
		return nil
	}
}

// handleForecast turns a current-weather message into page 0 of the
// bucketed forecast. The coordinates come from the message's own text;
// the page set is cached under this message's id for pagination.
func (h *CallbackHandler) handleForecast(ctx context.Context, query *tgbotapi.CallbackQuery, user *database.User) error {
	chatID := query.Message.Chat.ID

	coords, err := render.ParseCoords(query.Message.Text)
	if err != nil {
		return sendGenericError(h.api, chatID, user.Language, err, "cannot recover coordinates from message")
	}

	pages, err := h.deps.WeatherSvc.ForecastPages(ctx, coords, user.Language)
	if err != nil {
		return sendGenericError(h.api, chatID, user.Language, err, "forecast fetch failed")
	}

	entry := cache.ForecastEntry{Pages: pages, Verbosity: user.Verbosity}
	if err := h.deps.Cache.PutForecast(ctx, chatID, query.Message.MessageID, entry); err != nil {
		return sendGenericError(h.api, chatID, user.Language, err, "failed to cache forecast pages")
	}

	text := render.ForecastPage(pages, 0, entry.Verbosity, user.Language)
	return editMessage(h.api, chatID, query.Message.MessageID, text, keyboards.ForecastPages(0, len(pages)))
}

// handleChooseCity resolves a disambiguation selection back through
// the stored candidate set, keyed by the message the candidate list
// replied to.
func (h *CallbackHandler) handleChooseCity(ctx context.Context, query *tgbotapi.CallbackQuery, user *database.User, tok token.Token) error {
	chatID := query.Message.Chat.ID

	if query.Message.ReplyToMessage == nil {
		err := apperrors.New(apperrors.KindStateIntegrity, "candidate list message lost its reply target")
		return sendGenericError(h.api, chatID, user.Language, err, "cannot key disambiguation")
	}
	key := query.Message.ReplyToMessage.MessageID

	pending, err := h.deps.Cache.GetDisambiguation(ctx, chatID, key)
	if errors.Is(err, cache.ErrNotFound) {
		err = apperrors.Wrap(err, apperrors.KindStateIntegrity, "disambiguation expired or predates a restart")
		return sendGenericError(h.api, chatID, user.Language, err, "disambiguation lookup failed")
	}
	if err != nil {
		return sendGenericError(h.api, chatID, user.Language, err, "disambiguation lookup failed")
	}

	// The stored set remembers which flow created it; a lookup token
	// landing on a subscription set (or the reverse) means the button
	// and the row have drifted apart.
	forSubscription := tok.Action == token.ActionChooseCityForSub
	if pending.ForSubscription != forSubscription {
		err := apperrors.New(apperrors.KindStateIntegrity, "selection token does not match the stored candidate set")
		return sendGenericError(h.api, chatID, user.Language, err, "disambiguation selection failed")
	}

	if tok.Index >= len(pending.Candidates) {
		err := apperrors.New(apperrors.KindStateIntegrity, "selection index beyond stored candidate set")
		return sendGenericError(h.api, chatID, user.Language, err, "disambiguation selection failed")
	}
	candidate := pending.Candidates[tok.Index]

	// Replace the candidate list with the confirmed pick, dropping the
	// now-stale selection buttons.
	label := candidate.Name + ", " + candidate.Country
	if err := editMessage(h.api, chatID, query.Message.MessageID,
		i18n.Tf(user.Language, i18n.KeyCitySelected, label), nil); err != nil {
		logger.Warn("failed to edit candidate list message", "error", err)
	}

	if forSubscription {
		return startSubscription(ctx, h.api, h.deps, chatID, candidate, user)
	}
	return sendCurrentWeather(ctx, h.api, h.deps, chatID, candidate.Coords, user.Language)
}

// handleForecastPage renders page `index` from the cached page set of
// the message the button sits on. A missing cache entry is reported,
// never silently re-fetched.
func (h *CallbackHandler) handleForecastPage(ctx context.Context, query *tgbotapi.CallbackQuery, user *database.User, index int) error {
	chatID := query.Message.Chat.ID

	entry, err := h.deps.Cache.GetForecast(ctx, chatID, query.Message.MessageID)
	if errors.Is(err, cache.ErrNotFound) {
		err = apperrors.Wrap(err, apperrors.KindStateIntegrity, "forecast cache expired or predates a restart")
		return sendGenericError(h.api, chatID, user.Language, err, "forecast cache lookup failed")
	}
	if err != nil {
		return sendGenericError(h.api, chatID, user.Language, err, "forecast cache lookup failed")
	}

	// Rendering never offers an out-of-range page, so this only fires
	// for forged or stale tokens.
	if index >= len(entry.Pages) {
		err := apperrors.New(apperrors.KindStateIntegrity, "page index beyond cached page set")
		return sendGenericError(h.api, chatID, user.Language, err, "forecast pagination failed")
	}

	text := render.ForecastPage(entry.Pages, index, entry.Verbosity, user.Language)
	return editMessage(h.api, chatID, query.Message.MessageID, text, keyboards.ForecastPages(index, len(entry.Pages)))
}

// handleRemoveSubscription deletes the (chat, coordinates, time) tuple
// recovered from the listed subscription's own text.
func (h *CallbackHandler) handleRemoveSubscription(ctx context.Context, query *tgbotapi.CallbackQuery, user *database.User) error {
	chatID := query.Message.Chat.ID

	coords, notifyAt, err := render.ParseSubscriptionDetails(query.Message.Text)
	if err != nil {
		return sendGenericError(h.api, chatID, user.Language, err, "cannot recover subscription from message")
	}

	if err := h.deps.SubscriptionSvc.Cancel(ctx, chatID, coords, notifyAt); err != nil {
		return sendGenericError(h.api, chatID, user.Language, err, "failed to cancel subscription")
	}

	return editMessage(h.api, chatID, query.Message.MessageID,
		i18n.T(user.Language, i18n.KeySubCanceled), nil)
}
