// Package render turns weather data into localized message text. It
// also owns the embedded-state text convention: coordinates (and, for
// subscriptions, the notification time) are written into the message
// itself and parsed back out when a button on that message is pressed.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
	"github.com/weatherhelper/weatherbot/internal/database"
	"github.com/weatherhelper/weatherbot/internal/forecast"
	"github.com/weatherhelper/weatherbot/internal/i18n"
	"github.com/weatherhelper/weatherbot/internal/weather"
)

var (
	coordsLineRe = regexp.MustCompile(`(?m)^📍 (-?\d+(?:\.\d+)?), (-?\d+(?:\.\d+)?)$`)
	timeLineRe   = regexp.MustCompile(`(?m)^🕒 (\d{2}:\d{2}) UTC$`)
)

// CoordsLine renders the embedded-coordinates line.
func CoordsLine(c weather.Coordinates) string {
	return fmt.Sprintf("📍 %.4f, %.4f", c.Lat, c.Lon)
}

// TimeLine renders the embedded notification-time line.
func TimeLine(hhmm string) string {
	return fmt.Sprintf("🕒 %s UTC", hhmm)
}

// ParseCoords recovers the coordinates embedded in a message's text.
// A missing or mangled line means the message was edited or predates
// the current format, not a bug; the caller reports it generically.
func ParseCoords(text string) (weather.Coordinates, error) {
	m := coordsLineRe.FindStringSubmatch(text)
	if m == nil {
		return weather.Coordinates{}, apperrors.New(apperrors.KindStateIntegrity,
			"message text carries no coordinates line")
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return weather.Coordinates{}, apperrors.New(apperrors.KindStateIntegrity, "unparsable latitude in message text")
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return weather.Coordinates{}, apperrors.New(apperrors.KindStateIntegrity, "unparsable longitude in message text")
	}
	return weather.Coordinates{Lat: lat, Lon: lon}, nil
}

// ParseSubscriptionDetails recovers the coordinates and notification
// time embedded in a listed subscription message.
func ParseSubscriptionDetails(text string) (weather.Coordinates, string, error) {
	coords, err := ParseCoords(text)
	if err != nil {
		return weather.Coordinates{}, "", err
	}
	m := timeLineRe.FindStringSubmatch(text)
	if m == nil {
		return weather.Coordinates{}, "", apperrors.New(apperrors.KindStateIntegrity,
			"message text carries no notification-time line")
	}
	return coords, m[1], nil
}

// Current renders a current-conditions message in the given language.
func Current(cur *weather.Current, lang string) string {
	s := cur.Sample
	var b strings.Builder

	fmt.Fprintf(&b, "🌍 %s, %s — %s\n", cur.City, cur.Country, s.Local().Format("15:04"))
	fmt.Fprintf(&b, "%s, %.1f°C (%s %.1f°C)\n", s.Description, s.Temp, i18n.T(lang, i18n.KeyFeelsLike), s.FeelsLike)
	fmt.Fprintf(&b, "💧 %s: %d%%  ·  %s: %d hPa\n", i18n.T(lang, i18n.KeyHumidity), s.Humidity, i18n.T(lang, i18n.KeyPressure), s.Pressure)

	fmt.Fprintf(&b, "💨 %s: %.1f m/s", i18n.T(lang, i18n.KeyWind), s.Wind.Speed)
	if s.Wind.Gust != nil {
		fmt.Fprintf(&b, " (%s %.1f m/s)", i18n.T(lang, i18n.KeyGusts), *s.Wind.Gust)
	}
	b.WriteString("\n")

	if s.Visibility != nil {
		fmt.Fprintf(&b, "👁 %s: %d m\n", i18n.T(lang, i18n.KeyVisibility), *s.Visibility)
	}
	if s.Rain != nil {
		fmt.Fprintf(&b, "🌧 %s: %.1f mm\n", i18n.T(lang, i18n.KeyRain), *s.Rain)
	}
	if s.Snow != nil {
		fmt.Fprintf(&b, "❄️ %s: %.1f mm\n", i18n.T(lang, i18n.KeySnow), *s.Snow)
	}

	b.WriteString(CoordsLine(cur.Coords))
	return b.String()
}

// ForecastPage renders page `index` of the bucketed forecast in the
// verbosity the cache entry was created with.
func ForecastPage(pages []forecast.DayPage, index int, verbosity, lang string) string {
	page := pages[index]
	var b strings.Builder

	fmt.Fprintf(&b, "📅 %s, %s — %s\n", page.City, page.Country, page.Date)
	fmt.Fprintf(&b, "%s\n\n", i18n.Tf(lang, i18n.KeyDay, index+1, len(pages)))

	for _, s := range page.Samples {
		if verbosity == database.VerbosityShort {
			fmt.Fprintf(&b, "%s  %.0f°C, %s\n", s.Local().Format("15:04"), s.Temp, s.Description)
			continue
		}
		fmt.Fprintf(&b, "%s  %.1f°C (%s %.1f°C), %s\n", s.Local().Format("15:04"), s.Temp,
			i18n.T(lang, i18n.KeyFeelsLike), s.FeelsLike, s.Description)
		fmt.Fprintf(&b, "      💨 %.1f m/s · 💧 %d%% · ☔ %s %.0f%%\n",
			s.Wind.Speed, s.Humidity, i18n.T(lang, i18n.KeyPrecipProb), s.PrecipProb*100)
	}

	b.WriteString("\n")
	b.WriteString(CoordsLine(page.Coords))
	return b.String()
}

// SubscriptionItem renders one listed subscription; its text embeds
// the coordinates and time the cancel button needs.
func SubscriptionItem(sub database.Subscription, lang string) string {
	city := sub.City
	if sub.Country != "" {
		city = fmt.Sprintf("%s, %s", sub.City, sub.Country)
	}
	var b strings.Builder
	b.WriteString(i18n.Tf(lang, i18n.KeySubItem, city))
	b.WriteString("\n")
	b.WriteString(TimeLine(*sub.NotifyAt))
	b.WriteString("\n")
	b.WriteString(CoordsLine(weather.Coordinates{Lat: sub.Lat, Lon: sub.Lon}))
	return b.String()
}
