package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherhelper/weatherbot/internal/weather"
)

func TestAddCityRoundTrip(t *testing.T) {
	text := Compose(Prompt{Kind: KindAddCity}, "Which city?")
	assert.Equal(t, "AddCity/1\nWhich city?", text)

	decoded, ok := DecodeHeader(text)
	require.True(t, ok)
	assert.Equal(t, KindAddCity, decoded.Kind)
}

func TestAddTimeRoundTrip(t *testing.T) {
	coords := weather.Coordinates{Lat: 55.7522, Lon: 37.6156}
	text := Compose(Prompt{Kind: KindAddTime, Coords: coords}, "What time?")
	assert.Equal(t, "AddTime/1 55.7522 37.6156\nWhat time?", text)

	decoded, ok := DecodeHeader(text)
	require.True(t, ok)
	assert.Equal(t, KindAddTime, decoded.Kind)
	assert.Equal(t, coords, decoded.Coords)
}

func TestDecodeFailsClosed(t *testing.T) {
	cases := []string{
		"",
		"hello there",
		"AddCity",              // no version
		"AddCity/2",            // unsupported version
		"AddCity/1 extra",      // unexpected fields
		"AddTime/1",            // missing coordinates
		"AddTime/1 55.7",       // missing longitude
		"AddTime/1 abc def",    // non-numeric coordinates
		"AddTime/1 555.0 37.6", // out-of-range latitude
		"DelCity/1",            // unknown tag
	}
	for _, text := range cases {
		_, ok := DecodeHeader(text)
		assert.False(t, ok, "text %q", text)
	}
}

func TestDecodeIgnoresBody(t *testing.T) {
	decoded, ok := DecodeHeader("AddTime/1 10.0000 -20.0000\nAddCity/1 in the body is ignored")
	require.True(t, ok)
	assert.Equal(t, KindAddTime, decoded.Kind)
	assert.Equal(t, weather.Coordinates{Lat: 10, Lon: -20}, decoded.Coords)
}
