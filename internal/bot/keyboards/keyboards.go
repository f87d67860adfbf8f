package keyboards

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/weatherhelper/weatherbot/internal/bot/token"
	"github.com/weatherhelper/weatherbot/internal/i18n"
	"github.com/weatherhelper/weatherbot/internal/weather"
)

// Forecast creates the single "get forecast" button attached to a
// current-weather message.
func Forecast(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				i18n.T(lang, i18n.KeyBtnForecast),
				token.Token{Action: token.ActionForecast}.Encode(),
			),
		),
	)
}

// Candidates creates one numbered button per geocoding candidate, in
// candidate order. forSubscription switches the selection tokens from
// one-off lookup to subscription setup.
func Candidates(candidates []weather.Candidate, forSubscription bool) tgbotapi.InlineKeyboardMarkup {
	action := token.ActionChooseCity
	if forSubscription {
		action = token.ActionChooseCityForSub
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				CandidateLabel(i, c),
				token.Token{Action: action, Index: i}.Encode(),
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// CandidateLabel renders one candidate as a numbered button caption.
func CandidateLabel(index int, c weather.Candidate) string {
	label := fmt.Sprintf("%d. %s, %s", index+1, c.Name, c.Country)
	if c.State != "" {
		label += fmt.Sprintf(" (%s)", c.State)
	}
	return label
}

// ForecastPages creates the pagination row for page `index` of `total`
// pages. No button is ever offered for an index that has no page: the
// first page gets no backward button and the last no forward one. A
// single-page forecast gets no keyboard at all (nil).
func ForecastPages(index, total int) *tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if index > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			"◀️",
			token.Token{Action: token.ActionForecastPage, Index: index - 1}.Encode(),
		))
	}
	if index < total-1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			"▶️",
			token.Token{Action: token.ActionForecastPage, Index: index + 1}.Encode(),
		))
	}
	if len(row) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(row)
	return &markup
}

// CancelSubscription creates the cancel button attached to each listed
// subscription message.
func CancelSubscription(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				i18n.T(lang, i18n.KeyBtnCancelSub),
				token.Token{Action: token.ActionRemoveSub}.Encode(),
			),
		),
	)
}
