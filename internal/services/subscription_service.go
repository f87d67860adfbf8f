package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
	"github.com/weatherhelper/weatherbot/internal/database"
	"github.com/weatherhelper/weatherbot/internal/repository"
	"github.com/weatherhelper/weatherbot/internal/weather"
)

type SubscriptionService struct {
	subs *repository.SubscriptionRepository
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{subs: repository.NewSubscriptionRepository(db)}
}

// Start writes the awaiting-time row for the chosen city. Restarting
// the setup for the same (chat, coordinates) replaces the previous
// awaiting-time row instead of stacking a duplicate.
func (s *SubscriptionService) Start(ctx context.Context, chatID int64, candidate weather.Candidate, lang string) error {
	sub := &database.Subscription{
		ChatID:   chatID,
		City:     candidate.Name,
		Country:  candidate.Country,
		Lat:      candidate.Coords.Lat,
		Lon:      candidate.Coords.Lon,
		Language: lang,
	}
	return s.subs.CreateAwaiting(ctx, sub)
}

// Complete parses the user-provided time of day and finishes the
// two-phase setup. A parse failure leaves the store untouched.
func (s *SubscriptionService) Complete(ctx context.Context, chatID int64, coords weather.Coordinates, timeText string) (*database.Subscription, error) {
	parsed, err := time.Parse("15:04", timeText)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "notification time must be HH:MM")
	}
	return s.subs.Complete(ctx, chatID, coords.Lat, coords.Lon, parsed.Format("15:04"))
}

// List returns the chat's completed subscriptions.
func (s *SubscriptionService) List(ctx context.Context, chatID int64) ([]database.Subscription, error) {
	return s.subs.ListCompleted(ctx, chatID)
}

// Cancel deletes exactly the (chat, coordinates, time) tuple.
func (s *SubscriptionService) Cancel(ctx context.Context, chatID int64, coords weather.Coordinates, notifyAt string) error {
	return s.subs.Delete(ctx, chatID, coords.Lat, coords.Lon, notifyAt)
}

// DueAt returns the subscriptions whose notification time equals the
// given instant truncated to the minute, in UTC.
func (s *SubscriptionService) DueAt(ctx context.Context, now time.Time) ([]database.Subscription, error) {
	return s.subs.DueAt(ctx, now.UTC().Format("15:04"))
}

// CleanupAbandoned deletes awaiting-time rows older than the cutoff.
func (s *SubscriptionService) CleanupAbandoned(ctx context.Context, olderThan time.Time) error {
	return s.subs.DeleteAbandoned(ctx, olderThan)
}
