package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherhelper/weatherbot/internal/database"
	"github.com/weatherhelper/weatherbot/internal/forecast"
	"github.com/weatherhelper/weatherbot/internal/weather"
)

func testCurrent() *weather.Current {
	gust := 7.2
	return &weather.Current{
		City:           "Moscow",
		Country:        "RU",
		Coords:         weather.Coordinates{Lat: 55.7522, Lon: 37.6156},
		TimezoneOffset: 3 * 3600,
		Sample: weather.Sample{
			Time:           time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC),
			TimezoneOffset: 3 * 3600,
			Temp:           12.3,
			FeelsLike:      10.1,
			Humidity:       60,
			Pressure:       1013,
			Wind:           weather.Wind{Speed: 3.4, Gust: &gust},
			Description:    "light rain",
		},
	}
}

func TestCurrentEmbedsParsableCoordinates(t *testing.T) {
	text := Current(testCurrent(), "en")

	coords, err := ParseCoords(text)
	require.NoError(t, err)
	assert.Equal(t, weather.Coordinates{Lat: 55.7522, Lon: 37.6156}, coords)

	assert.Contains(t, text, "Moscow, RU")
	assert.Contains(t, text, "light rain")
	// 11:00 UTC is 14:00 local in Moscow.
	assert.Contains(t, text, "14:00")
}

func TestParseCoordsFailsOnEditedText(t *testing.T) {
	_, err := ParseCoords("no location here")
	assert.Error(t, err)

	_, err = ParseCoords("📍 somewhere, someplace")
	assert.Error(t, err)
}

func TestParseCoordsNegativeValues(t *testing.T) {
	coords, err := ParseCoords("header\n" + CoordsLine(weather.Coordinates{Lat: -33.8679, Lon: -151.2073}))
	require.NoError(t, err)
	assert.Equal(t, weather.Coordinates{Lat: -33.8679, Lon: -151.2073}, coords)
}

func TestSubscriptionItemRoundTrip(t *testing.T) {
	notifyAt := "07:30"
	sub := database.Subscription{
		ChatID:   42,
		City:     "Paris",
		Country:  "FR",
		Lat:      48.8589,
		Lon:      2.3200,
		NotifyAt: &notifyAt,
	}
	text := SubscriptionItem(sub, "en")

	coords, hhmm, err := ParseSubscriptionDetails(text)
	require.NoError(t, err)
	assert.Equal(t, weather.Coordinates{Lat: 48.8589, Lon: 2.32}, coords)
	assert.Equal(t, "07:30", hhmm)
}

func TestParseSubscriptionDetailsRequiresTimeLine(t *testing.T) {
	_, _, err := ParseSubscriptionDetails(CoordsLine(weather.Coordinates{Lat: 1, Lon: 2}))
	assert.Error(t, err)
}

func testPages() []forecast.DayPage {
	s := func(hour int, temp float64) weather.Sample {
		return weather.Sample{
			Time:           time.Date(2024, 3, 10, hour, 0, 0, 0, time.UTC),
			TimezoneOffset: 0,
			Temp:           temp,
			FeelsLike:      temp - 2,
			Humidity:       55,
			Wind:           weather.Wind{Speed: 2.5},
			PrecipProb:     0.4,
			Description:    "scattered clouds",
		}
	}
	return []forecast.DayPage{
		{
			Date: "2024-03-10", City: "London", Country: "GB",
			Coords:  weather.Coordinates{Lat: 51.5073, Lon: -0.1276},
			Samples: []weather.Sample{s(9, 8.1), s(12, 10.4)},
		},
		{
			Date: "2024-03-11", City: "London", Country: "GB",
			Coords:  weather.Coordinates{Lat: 51.5073, Lon: -0.1276},
			Samples: []weather.Sample{s(9, 7.0)},
		},
	}
}

func TestForecastPageFullVerbosity(t *testing.T) {
	text := ForecastPage(testPages(), 0, database.VerbosityFull, "en")

	assert.Contains(t, text, "London, GB — 2024-03-10")
	assert.Contains(t, text, "Day 1 of 2")
	assert.Contains(t, text, "feels like")
	assert.Contains(t, text, "40%")

	coords, err := ParseCoords(text)
	require.NoError(t, err)
	assert.Equal(t, weather.Coordinates{Lat: 51.5073, Lon: -0.1276}, coords)
}

func TestForecastPageShortVerbosity(t *testing.T) {
	text := ForecastPage(testPages(), 1, database.VerbosityShort, "en")

	assert.Contains(t, text, "Day 2 of 2")
	assert.Contains(t, text, "scattered clouds")
	assert.NotContains(t, text, "feels like")
}
