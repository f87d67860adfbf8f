package services

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
	"github.com/weatherhelper/weatherbot/internal/weather"
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

func parisCandidate() weather.Candidate {
	return weather.Candidate{
		Name:    "Paris",
		Country: "FR",
		Coords:  weather.Coordinates{Lat: 48.8589, Lon: 2.3200},
	}
}

func TestDueAtTruncatesToMinute(t *testing.T) {
	svc := NewSubscriptionService(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, svc.Start(ctx, 1001, parisCandidate(), "en"))
	_, err := svc.Complete(ctx, 1001, parisCandidate().Coords, "08:30")
	require.NoError(t, err)

	// Seconds within the minute never matter to the match.
	due, err := svc.DueAt(ctx, time.Date(2026, 3, 14, 8, 30, 45, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.EqualValues(t, 1001, due[0].ChatID)

	due, err = svc.DueAt(ctx, time.Date(2026, 3, 14, 8, 31, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestCompleteRejectsBadTimeWithoutMutation(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()

	require.NoError(t, svc.Start(ctx, 1001, parisCandidate(), "en"))

	_, err := svc.Complete(ctx, 1001, parisCandidate().Coords, "half past eight")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	// The awaiting row is untouched; a corrected reply can still finish.
	var n int64
	require.NoError(t, db.Model(&database.Subscription{}).
		Where("chat_id = ? AND notify_at IS NULL", 1001).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	sub, err := svc.Complete(ctx, 1001, parisCandidate().Coords, "08:30")
	require.NoError(t, err)
	assert.Equal(t, "08:30", *sub.NotifyAt)
}

func TestListReturnsOnlyCompletedForChat(t *testing.T) {
	svc := NewSubscriptionService(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, svc.Start(ctx, 1001, parisCandidate(), "en"))
	_, err := svc.Complete(ctx, 1001, parisCandidate().Coords, "08:30")
	require.NoError(t, err)

	// Awaiting its time; must not be listed.
	oslo := weather.Candidate{Name: "Oslo", Country: "NO", Coords: weather.Coordinates{Lat: 59.9133, Lon: 10.7389}}
	require.NoError(t, svc.Start(ctx, 1001, oslo, "en"))

	require.NoError(t, svc.Start(ctx, 2002, parisCandidate(), "en"))
	_, err = svc.Complete(ctx, 2002, parisCandidate().Coords, "09:00")
	require.NoError(t, err)

	subs, err := svc.List(ctx, 1001)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Paris", subs[0].City)
	assert.Equal(t, "08:30", *subs[0].NotifyAt)
}
