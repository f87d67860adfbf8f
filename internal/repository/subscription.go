package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
	"github.com/weatherhelper/weatherbot/internal/database"
)

// SubscriptionRepository handles subscription rows, including the
// two-phase lifecycle invariants the store itself does not enforce.
type SubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository.
func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// CreateAwaiting inserts a new awaiting-time row for (chat, coords),
// first deleting any previous awaiting-time row for the same pair so
// that a restarted setup never leaves duplicate garbage behind.
func (r *SubscriptionRepository) CreateAwaiting(ctx context.Context, sub *database.Subscription) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ? AND lat = ? AND lon = ? AND notify_at IS NULL",
			sub.ChatID, sub.Lat, sub.Lon).
			Unscoped().Delete(&database.Subscription{}).Error; err != nil {
			return err
		}
		sub.NotifyAt = nil
		return tx.Create(sub).Error
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindStore, "failed to create awaiting subscription")
	}
	return nil
}

// Complete sets the notification time on the awaiting-time row for
// (chat, coords), deleting any completed row already holding the same
// (chat, coords, time) tuple so that tuple stays unique.
func (r *SubscriptionRepository) Complete(ctx context.Context, chatID int64, lat, lon float64, notifyAt string) (*database.Subscription, error) {
	var sub database.Subscription
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ? AND lat = ? AND lon = ? AND notify_at IS NULL", chatID, lat, lon).
			First(&sub).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ? AND lat = ? AND lon = ? AND notify_at = ?", chatID, lat, lon, notifyAt).
			Unscoped().Delete(&database.Subscription{}).Error; err != nil {
			return err
		}
		return tx.Model(&sub).Update("notify_at", notifyAt).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.Wrap(err, apperrors.KindStateIntegrity, "no awaiting subscription for these coordinates")
		}
		return nil, apperrors.Wrap(err, apperrors.KindStore, "failed to complete subscription")
	}
	return &sub, nil
}

// ListCompleted returns the chat's completed subscriptions in creation
// order.
func (r *SubscriptionRepository) ListCompleted(ctx context.Context, chatID int64) ([]database.Subscription, error) {
	var subs []database.Subscription
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND notify_at IS NOT NULL", chatID).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStore, "failed to list subscriptions")
	}
	return subs, nil
}

// Delete removes exactly the (chat, coordinates, time) tuple.
func (r *SubscriptionRepository) Delete(ctx context.Context, chatID int64, lat, lon float64, notifyAt string) error {
	result := r.db.WithContext(ctx).
		Where("chat_id = ? AND lat = ? AND lon = ? AND notify_at = ?", chatID, lat, lon, notifyAt).
		Unscoped().Delete(&database.Subscription{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, apperrors.KindStore, "failed to delete subscription")
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.KindStateIntegrity, "subscription not found")
	}
	return nil
}

// DueAt returns all completed subscriptions whose notification time
// equals the given minute, formatted "HH:MM" in UTC.
func (r *SubscriptionRepository) DueAt(ctx context.Context, hhmm string) ([]database.Subscription, error) {
	var subs []database.Subscription
	err := r.db.WithContext(ctx).
		Where("notify_at = ?", hhmm).
		Find(&subs).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStore, "failed to query due subscriptions")
	}
	return subs, nil
}

// DeleteAbandoned removes awaiting-time rows older than the cutoff;
// their setup was never finished.
func (r *SubscriptionRepository) DeleteAbandoned(ctx context.Context, olderThan time.Time) error {
	err := r.db.WithContext(ctx).
		Where("notify_at IS NULL AND created_at < ?", olderThan).
		Unscoped().Delete(&database.Subscription{}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindStore, "failed to delete abandoned subscriptions")
	}
	return nil
}
