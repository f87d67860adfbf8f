package services

import (
	"context"
	"regexp"
	"unicode/utf8"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
	"github.com/weatherhelper/weatherbot/internal/forecast"
	"github.com/weatherhelper/weatherbot/internal/weather"
)

const maxCityNameLength = 25

// City names: letters, spaces, apostrophes and hyphens only. Checked
// before any network call.
var cityNameRe = regexp.MustCompile(`^\p{L}[\p{L} '\-]*$`)

// Provider is the narrow slice of the weather client the service needs.
type Provider interface {
	Geocode(ctx context.Context, query string) ([]weather.Candidate, error)
	Current(ctx context.Context, coords weather.Coordinates, lang string) (*weather.Current, error)
	Forecast(ctx context.Context, coords weather.Coordinates, lang string) (*weather.Forecast, error)
}

// WeatherService performs geocoding and weather lookups and buckets
// forecast series into day pages.
type WeatherService struct {
	provider Provider
}

func NewWeatherService(provider Provider) *WeatherService {
	return &WeatherService{provider: provider}
}

// ValidateCityName rejects text that cannot be a city name, so invalid
// input short-circuits without a geocoding call.
func ValidateCityName(name string) error {
	if name == "" || utf8.RuneCountInString(name) > maxCityNameLength || !cityNameRe.MatchString(name) {
		return apperrors.New(apperrors.KindValidation, "text is not a valid city name")
	}
	return nil
}

// FindCities validates the query and geocodes it. An empty result is
// "unknown city", not an error.
func (s *WeatherService) FindCities(ctx context.Context, query string) ([]weather.Candidate, error) {
	if err := ValidateCityName(query); err != nil {
		return nil, err
	}
	return s.provider.Geocode(ctx, query)
}

// Current fetches current conditions for the coordinates.
func (s *WeatherService) Current(ctx context.Context, coords weather.Coordinates, lang string) (*weather.Current, error) {
	return s.provider.Current(ctx, coords, lang)
}

// ForecastPages fetches the multi-day series and buckets it into day
// pages. Any validation failure of the series fails the whole fetch:
// the caller treats it as "forecast unavailable".
func (s *WeatherService) ForecastPages(ctx context.Context, coords weather.Coordinates, lang string) ([]forecast.DayPage, error) {
	fc, err := s.provider.Forecast(ctx, coords, lang)
	if err != nil {
		return nil, err
	}
	return forecast.Bucket(fc)
}
