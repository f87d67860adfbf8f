// Package i18n resolves user-facing strings by Telegram language code,
// falling back to English for unsupported languages.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Key names one localizable message.
type Key string

const (
	KeyStart          Key = "start"
	KeyHelp           Key = "help"
	KeyUnknownCommand Key = "unknown_command"
	KeyGenericError   Key = "generic_error"

	KeyInvalidCityName Key = "invalid_city_name"
	KeyUnknownCity     Key = "unknown_city"
	KeyChooseCity      Key = "choose_city"
	KeyCitySelected    Key = "city_selected"

	KeyAddCityPrompt Key = "add_city_prompt"
	KeyAddTimePrompt Key = "add_time_prompt"
	KeyInvalidTime   Key = "invalid_time"
	KeySubCreated    Key = "sub_created"
	KeySubCanceled   Key = "sub_canceled"
	KeySubsEmpty     Key = "subs_empty"
	KeySubItem       Key = "sub_item"
	KeyDailyForecast Key = "daily_forecast"

	KeyVerbosityShort Key = "verbosity_short"
	KeyVerbosityFull  Key = "verbosity_full"

	KeyBtnForecast  Key = "btn_forecast"
	KeyBtnCancelSub Key = "btn_cancel_sub"

	KeyFeelsLike  Key = "feels_like"
	KeyHumidity   Key = "humidity"
	KeyPressure   Key = "pressure"
	KeyWind       Key = "wind"
	KeyGusts      Key = "gusts"
	KeyVisibility Key = "visibility"
	KeyClouds     Key = "clouds"
	KeyPrecipProb Key = "precip_prob"
	KeyRain       Key = "rain"
	KeySnow       Key = "snow"
	KeyDay        Key = "day"
)

var supported = []language.Tag{
	language.English, // first tag is the fallback
	language.Russian,
}

var matcher = language.NewMatcher(supported)

var catalogs = map[language.Tag]map[Key]string{
	language.English: {
		KeyStart: "👋 Send me a city name and I'll reply with the current weather.\n\n" +
			"/subscribe — get a forecast pushed to you daily\n" +
			"/subscriptions — list and cancel your subscriptions\n" +
			"/short, /full — forecast detail level\n" +
			"/help — all commands",
		KeyHelp: "Commands:\n" +
			"/start — what this bot does\n" +
			"/subscribe — set up a daily forecast push\n" +
			"/subscriptions — list your subscriptions\n" +
			"/short — compact forecast pages\n" +
			"/full — detailed forecast pages\n\n" +
			"Or just send a city name to get the current weather.",
		KeyUnknownCommand: "Unknown command. Use /help to see what I understand.",
		KeyGenericError:   "😔 Something went wrong. Please try again.",

		KeyInvalidCityName: "That doesn't look like a city name. Use letters, spaces, apostrophes or hyphens, up to 25 characters.",
		KeyUnknownCity:     "I couldn't find a city by that name.",
		KeyChooseCity:      "Several cities match. Pick one:",
		KeyCitySelected:    "Selected: %s",

		KeyAddCityPrompt: "🏙 Reply to this message with the city for your daily forecast.",
		KeyAddTimePrompt: "🕒 Reply to this message with the push time as HH:MM (24h, UTC).",
		KeyInvalidTime:   "Please send the time as HH:MM in 24-hour format, e.g. 07:30.",
		KeySubCreated:    "✅ Daily forecast for %s set for %s UTC.",
		KeySubCanceled:   "✅ Subscription canceled.",
		KeySubsEmpty:     "You have no subscriptions. Use /subscribe to add one.",
		KeySubItem:       "🔔 Daily forecast: %s",
		KeyDailyForecast: "🔔 Your daily forecast",

		KeyVerbosityShort: "Forecast pages will be compact.",
		KeyVerbosityFull:  "Forecast pages will be detailed.",

		KeyBtnForecast:  "📅 5-day forecast",
		KeyBtnCancelSub: "🗑 Cancel",

		KeyFeelsLike:  "feels like",
		KeyHumidity:   "humidity",
		KeyPressure:   "pressure",
		KeyWind:       "wind",
		KeyGusts:      "gusts",
		KeyVisibility: "visibility",
		KeyClouds:     "clouds",
		KeyPrecipProb: "precipitation chance",
		KeyRain:       "rain",
		KeySnow:       "snow",
		KeyDay:        "Day %d of %d",
	},
	language.Russian: {
		KeyStart: "👋 Отправьте название города, и я пришлю текущую погоду.\n\n" +
			"/subscribe — ежедневный прогноз в указанное время\n" +
			"/subscriptions — список и отмена подписок\n" +
			"/short, /full — детализация прогноза\n" +
			"/help — все команды",
		KeyHelp: "Команды:\n" +
			"/start — что умеет бот\n" +
			"/subscribe — настроить ежедневный прогноз\n" +
			"/subscriptions — список подписок\n" +
			"/short — компактные страницы прогноза\n" +
			"/full — подробные страницы прогноза\n\n" +
			"Или просто отправьте название города.",
		KeyUnknownCommand: "Неизвестная команда. Используйте /help для списка команд.",
		KeyGenericError:   "😔 Что-то пошло не так. Попробуйте еще раз.",

		KeyInvalidCityName: "Это не похоже на название города. Используйте буквы, пробелы, апострофы и дефисы, не более 25 символов.",
		KeyUnknownCity:     "Не удалось найти город с таким названием.",
		KeyChooseCity:      "Найдено несколько городов. Выберите один:",
		KeyCitySelected:    "Выбрано: %s",

		KeyAddCityPrompt: "🏙 Ответьте на это сообщение названием города для ежедневного прогноза.",
		KeyAddTimePrompt: "🕒 Ответьте на это сообщение временем отправки в формате ЧЧ:ММ (24ч, UTC).",
		KeyInvalidTime:   "Отправьте время в формате ЧЧ:ММ (24-часовой формат), например 07:30.",
		KeySubCreated:    "✅ Ежедневный прогноз для %s настроен на %s UTC.",
		KeySubCanceled:   "✅ Подписка отменена.",
		KeySubsEmpty:     "У вас нет подписок. Используйте /subscribe, чтобы добавить.",
		KeySubItem:       "🔔 Ежедневный прогноз: %s",
		KeyDailyForecast: "🔔 Ваш ежедневный прогноз",

		KeyVerbosityShort: "Страницы прогноза будут компактными.",
		KeyVerbosityFull:  "Страницы прогноза будут подробными.",

		KeyBtnForecast:  "📅 Прогноз на 5 дней",
		KeyBtnCancelSub: "🗑 Отменить",

		KeyFeelsLike:  "ощущается как",
		KeyHumidity:   "влажность",
		KeyPressure:   "давление",
		KeyWind:       "ветер",
		KeyGusts:      "порывы",
		KeyVisibility: "видимость",
		KeyClouds:     "облачность",
		KeyPrecipProb: "вероятность осадков",
		KeyRain:       "дождь",
		KeySnow:       "снег",
		KeyDay:        "День %d из %d",
	},
}

// Resolve maps a Telegram language code onto a supported language tag.
func Resolve(langCode string) language.Tag {
	desired, err := language.Parse(langCode)
	if err != nil {
		return supported[0]
	}
	_, index, _ := matcher.Match(desired)
	return supported[index]
}

// T returns the message for the given language code, falling back to
// English when the language or the key is not covered.
func T(langCode string, key Key) string {
	tag := Resolve(langCode)
	if msg, ok := catalogs[tag][key]; ok {
		return msg
	}
	return catalogs[supported[0]][key]
}

// Tf formats the message for the given language code.
func Tf(langCode string, key Key, args ...any) string {
	return fmt.Sprintf(T(langCode, key), args...)
}
