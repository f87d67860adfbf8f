package cache

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
	"github.com/weatherhelper/weatherbot/internal/database"
)

// DBStore keeps conversation state in Postgres rows, relying on the
// periodic sweep for expiry. It survives process restarts.
type DBStore struct {
	db *gorm.DB
}

// NewDBStore creates a Postgres-backed conversation cache.
func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

// PutDisambiguation stores the candidate list for (chat, message),
// replacing a previous entry for the same key.
func (s *DBStore) PutDisambiguation(ctx context.Context, chatID int64, messageID int, d PendingDisambiguation) error {
	payload, err := json.Marshal(d.Candidates)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, "failed to encode candidates")
	}

	row := database.Disambiguation{
		ChatID:          chatID,
		MessageID:       messageID,
		Candidates:      string(payload),
		ForSubscription: d.ForSubscription,
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}, {Name: "message_id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindStore, "failed to store disambiguation")
	}
	return nil
}

// GetDisambiguation reads the candidate list for (chat, message).
func (s *DBStore) GetDisambiguation(ctx context.Context, chatID int64, messageID int) (*PendingDisambiguation, error) {
	var row database.Disambiguation
	err := s.db.WithContext(ctx).
		Where("chat_id = ? AND message_id = ?", chatID, messageID).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStore, "failed to read disambiguation")
	}

	d := PendingDisambiguation{ForSubscription: row.ForSubscription}
	if err := json.Unmarshal([]byte(row.Candidates), &d.Candidates); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStateIntegrity, "stored candidates are malformed")
	}
	return &d, nil
}

// PutForecast stores the page sequence for (chat, message).
func (s *DBStore) PutForecast(ctx context.Context, chatID int64, messageID int, entry ForecastEntry) error {
	payload, err := json.Marshal(entry.Pages)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, "failed to encode forecast pages")
	}

	row := database.ForecastPages{
		ChatID:    chatID,
		MessageID: messageID,
		Pages:     string(payload),
		Verbosity: entry.Verbosity,
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}, {Name: "message_id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindStore, "failed to store forecast pages")
	}
	return nil
}

// GetForecast reads the page sequence for (chat, message).
func (s *DBStore) GetForecast(ctx context.Context, chatID int64, messageID int) (*ForecastEntry, error) {
	var row database.ForecastPages
	err := s.db.WithContext(ctx).
		Where("chat_id = ? AND message_id = ?", chatID, messageID).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStore, "failed to read forecast pages")
	}

	entry := ForecastEntry{Verbosity: row.Verbosity}
	if err := json.Unmarshal([]byte(row.Pages), &entry.Pages); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStateIntegrity, "stored forecast pages are malformed")
	}
	return &entry, nil
}

// Sweep deletes conversation rows created before the cutoff.
func (s *DBStore) Sweep(ctx context.Context, olderThan time.Time) error {
	if err := s.db.WithContext(ctx).
		Where("created_at < ?", olderThan).
		Unscoped().Delete(&database.Disambiguation{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.KindStore, "failed to sweep disambiguations")
	}
	if err := s.db.WithContext(ctx).
		Where("created_at < ?", olderThan).
		Unscoped().Delete(&database.ForecastPages{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.KindStore, "failed to sweep forecast pages")
	}
	return nil
}
