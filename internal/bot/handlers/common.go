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
	"github.com/weatherhelper/weatherbot/internal/weather"
)

func sendText(api Sender, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := api.Send(msg)
	return err
}

// sendGenericError logs the failure and shows the one generic error
// message; nothing in the dispatch path is fatal to the process.
func sendGenericError(api Sender, chatID int64, lang string, err error, context string) error {
	logger.Error(context, "error", err, "chat_id", chatID)
	return sendText(api, chatID, i18n.T(lang, i18n.KeyGenericError))
}

func editMessage(api Sender, chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	var edit tgbotapi.EditMessageTextConfig
	if markup != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *markup)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	_, err := api.Request(edit)
	return err
}

// sendCurrentWeather fetches and renders current conditions with the
// "get forecast" button. The rendered text embeds the coordinates; a
// later forecast press reads them back from the message itself.
func sendCurrentWeather(ctx context.Context, api Sender, deps Dependencies, chatID int64, coords weather.Coordinates, lang string) error {
	cur, err := deps.WeatherSvc.Current(ctx, coords, lang)
	if err != nil {
		return sendGenericError(api, chatID, lang, err, "current weather fetch failed")
	}

	msg := tgbotapi.NewMessage(chatID, render.Current(cur, lang))
	msg.ReplyMarkup = keyboards.Forecast(lang)
	_, err = api.Send(msg)
	return err
}

// startSubscription writes the awaiting-time row and sends the
// forced-reply time prompt whose header carries the coordinates; no
// other channel carries them to the second step.
func startSubscription(ctx context.Context, api Sender, deps Dependencies, chatID int64, candidate weather.Candidate, user *database.User) error {
	if err := deps.SubscriptionSvc.Start(ctx, chatID, candidate, user.Language); err != nil {
		return sendGenericError(api, chatID, user.Language, err, "subscription start failed")
	}

	p := prompt.Prompt{Kind: prompt.KindAddTime, Coords: candidate.Coords}
	msg := tgbotapi.NewMessage(chatID, prompt.Compose(p, i18n.T(user.Language, i18n.KeyAddTimePrompt)))
	msg.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true}
	_, err := api.Send(msg)
	return err
}
