package keyboards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherhelper/weatherbot/internal/weather"
)

func TestForecastPagesBounds(t *testing.T) {
	// First page of a multi-page forecast: forward only.
	markup := ForecastPages(0, 5)
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 1)
	assert.Equal(t, "FI:1", *markup.InlineKeyboard[0][0].CallbackData)

	// Last page: backward only.
	markup = ForecastPages(4, 5)
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard[0], 1)
	assert.Equal(t, "FI:3", *markup.InlineKeyboard[0][0].CallbackData)

	// Middle page: both directions.
	markup = ForecastPages(2, 5)
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard[0], 2)
	assert.Equal(t, "FI:1", *markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "FI:3", *markup.InlineKeyboard[0][1].CallbackData)

	// Single page: no keyboard at all.
	assert.Nil(t, ForecastPages(0, 1))
}

func TestCandidatesPreserveOrder(t *testing.T) {
	candidates := []weather.Candidate{
		{Name: "Springfield", Country: "US", State: "Illinois"},
		{Name: "Springfield", Country: "US", State: "Missouri"},
		{Name: "Springfield", Country: "US", State: "Oregon"},
	}

	markup := Candidates(candidates, false)
	require.Len(t, markup.InlineKeyboard, 3)
	for i, row := range markup.InlineKeyboard {
		require.Len(t, row, 1)
		assert.Equal(t, CandidateLabel(i, candidates[i]), row[0].Text)
	}
	assert.Equal(t, "C:0", *markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "C:2", *markup.InlineKeyboard[2][0].CallbackData)

	subMarkup := Candidates(candidates, true)
	assert.Equal(t, "CS:1", *subMarkup.InlineKeyboard[1][0].CallbackData)
}

func TestCandidateLabel(t *testing.T) {
	assert.Equal(t, "1. Paris, FR", CandidateLabel(0, weather.Candidate{Name: "Paris", Country: "FR"}))
	assert.Equal(t, "3. Springfield, US (Oregon)",
		CandidateLabel(2, weather.Candidate{Name: "Springfield", Country: "US", State: "Oregon"}))
}
