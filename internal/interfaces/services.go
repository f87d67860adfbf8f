package interfaces

import (
	"context"
	"time"

	"github.com/weatherhelper/weatherbot/internal/database"
	"github.com/weatherhelper/weatherbot/internal/forecast"
	"github.com/weatherhelper/weatherbot/internal/weather"
)

// UserServiceInterface defines the contract for user operations
type UserServiceInterface interface {
	RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, language string) (*database.User, error)
	SetVerbosity(ctx context.Context, userID uint, verbosity string) error
}

// WeatherServiceInterface defines the contract for geocoding and
// weather lookups
type WeatherServiceInterface interface {
	FindCities(ctx context.Context, query string) ([]weather.Candidate, error)
	Current(ctx context.Context, coords weather.Coordinates, lang string) (*weather.Current, error)
	ForecastPages(ctx context.Context, coords weather.Coordinates, lang string) ([]forecast.DayPage, error)
}

// SubscriptionServiceInterface defines the contract for the two-phase
// subscription lifecycle
type SubscriptionServiceInterface interface {
	Start(ctx context.Context, chatID int64, candidate weather.Candidate, lang string) error
	Complete(ctx context.Context, chatID int64, coords weather.Coordinates, timeText string) (*database.Subscription, error)
	List(ctx context.Context, chatID int64) ([]database.Subscription, error)
	Cancel(ctx context.Context, chatID int64, coords weather.Coordinates, notifyAt string) error
	DueAt(ctx context.Context, now time.Time) ([]database.Subscription, error)
	CleanupAbandoned(ctx context.Context, olderThan time.Time) error
}
