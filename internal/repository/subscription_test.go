package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
	"github.com/weatherhelper/weatherbot/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection, or each pooled connection gets its own empty
	// in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&database.Subscription{}))
	return db
}

func awaitingSub(chatID int64, lat, lon float64) *database.Subscription {
	return &database.Subscription{
		ChatID:   chatID,
		City:     "Paris",
		Country:  "FR",
		Lat:      lat,
		Lon:      lon,
		Language: "en",
	}
}

func countWhere(t *testing.T, db *gorm.DB, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&database.Subscription{}).Where(query, args...).Count(&n).Error)
	return n
}

func TestCreateAwaitingReplacesPreviousRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateAwaiting(ctx, awaitingSub(1001, 48.8589, 2.3200)))
	require.NoError(t, repo.CreateAwaiting(ctx, awaitingSub(1001, 48.8589, 2.3200)))

	assert.EqualValues(t, 1, countWhere(t, db,
		"chat_id = ? AND lat = ? AND lon = ? AND notify_at IS NULL", 1001, 48.8589, 2.3200),
		"restarting the setup must replace the awaiting row, not stack a duplicate")
}

func TestCreateAwaitingKeepsOtherPairs(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateAwaiting(ctx, awaitingSub(1001, 48.8589, 2.3200)))
	require.NoError(t, repo.CreateAwaiting(ctx, awaitingSub(1001, 59.9133, 10.7389)))
	require.NoError(t, repo.CreateAwaiting(ctx, awaitingSub(2002, 48.8589, 2.3200)))

	assert.EqualValues(t, 3, countWhere(t, db, "notify_at IS NULL"),
		"other coordinate pairs and chats must not be touched")
}

func TestCompleteSetsTimeOnAwaitingRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateAwaiting(ctx, awaitingSub(1001, 48.8589, 2.3200)))

	sub, err := repo.Complete(ctx, 1001, 48.8589, 2.3200, "08:30")
	require.NoError(t, err)
	assert.Equal(t, "Paris", sub.City)

	assert.EqualValues(t, 0, countWhere(t, db, "notify_at IS NULL"))
	assert.EqualValues(t, 1, countWhere(t, db, "notify_at = ?", "08:30"))
}

func TestCompleteDeletesDuplicateTuple(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	existing := awaitingSub(1001, 48.8589, 2.3200)
	notifyAt := "08:30"
	existing.NotifyAt = &notifyAt
	require.NoError(t, db.Create(existing).Error)

	require.NoError(t, repo.CreateAwaiting(ctx, awaitingSub(1001, 48.8589, 2.3200)))
	_, err := repo.Complete(ctx, 1001, 48.8589, 2.3200, "08:30")
	require.NoError(t, err)

	assert.EqualValues(t, 1, countWhere(t, db,
		"chat_id = ? AND lat = ? AND lon = ? AND notify_at = ?", 1001, 48.8589, 2.3200, "08:30"),
		"completing onto an existing identical tuple must leave exactly one row")
}

func TestCompleteWithoutAwaitingRow(t *testing.T) {
	repo := NewSubscriptionRepository(newTestDB(t))

	_, err := repo.Complete(context.Background(), 1001, 48.8589, 2.3200, "08:30")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindStateIntegrity, apperrors.KindOf(err))
}

func TestDueAtMatchesExactMinute(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateAwaiting(ctx, awaitingSub(1001, 48.8589, 2.3200)))
	_, err := repo.Complete(ctx, 1001, 48.8589, 2.3200, "08:30")
	require.NoError(t, err)

	require.NoError(t, repo.CreateAwaiting(ctx, awaitingSub(2002, 59.9133, 10.7389)))
	_, err = repo.Complete(ctx, 2002, 59.9133, 10.7389, "08:31")
	require.NoError(t, err)

	// Still awaiting its time; must never be due.
	require.NoError(t, repo.CreateAwaiting(ctx, awaitingSub(3003, 52.5200, 13.4050)))

	due, err := repo.DueAt(ctx, "08:30")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.EqualValues(t, 1001, due[0].ChatID)

	due, err = repo.DueAt(ctx, "08:32")
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestDeleteExactTuple(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	for _, at := range []string{"08:30", "19:00"} {
		require.NoError(t, repo.CreateAwaiting(ctx, awaitingSub(1001, 48.8589, 2.3200)))
		_, err := repo.Complete(ctx, 1001, 48.8589, 2.3200, at)
		require.NoError(t, err)
	}

	require.NoError(t, repo.Delete(ctx, 1001, 48.8589, 2.3200, "08:30"))

	subs, err := repo.ListCompleted(ctx, 1001)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "19:00", *subs[0].NotifyAt)

	err = repo.Delete(ctx, 1001, 48.8589, 2.3200, "08:30")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindStateIntegrity, apperrors.KindOf(err))
}

func TestDeleteAbandonedKeepsFreshAndCompletedRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	stale := awaitingSub(1001, 48.8589, 2.3200)
	require.NoError(t, repo.CreateAwaiting(ctx, stale))
	require.NoError(t, db.Model(stale).Update("created_at", time.Now().UTC().Add(-48*time.Hour)).Error)

	require.NoError(t, repo.CreateAwaiting(ctx, awaitingSub(2002, 59.9133, 10.7389)))

	require.NoError(t, repo.CreateAwaiting(ctx, awaitingSub(3003, 52.5200, 13.4050)))
	completed, err := repo.Complete(ctx, 3003, 52.5200, 13.4050, "07:00")
	require.NoError(t, err)
	require.NoError(t, db.Model(completed).Update("created_at", time.Now().UTC().Add(-48*time.Hour)).Error)

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	require.NoError(t, repo.DeleteAbandoned(ctx, cutoff))

	assert.EqualValues(t, 0, countWhere(t, db, "chat_id = ?", 1001), "stale awaiting row must be swept")
	assert.EqualValues(t, 1, countWhere(t, db, "chat_id = ? AND notify_at IS NULL", 2002), "fresh awaiting row must survive")
	assert.EqualValues(t, 1, countWhere(t, db, "chat_id = ? AND notify_at = ?", 3003, "07:00"), "completed rows are never swept")
}
