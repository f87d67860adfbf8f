package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/weatherhelper/weatherbot/internal/database"
	"github.com/weatherhelper/weatherbot/internal/forecast"
	"github.com/weatherhelper/weatherbot/internal/weather"
)

func newTestStore(t *testing.T) (*DBStore, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection, or each pooled connection gets its own empty
	// in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&database.Disambiguation{}, &database.ForecastPages{}))
	return NewDBStore(db), db
}

func storedCandidates() []weather.Candidate {
	return []weather.Candidate{
		{Name: "Springfield", Country: "US", State: "Illinois", Coords: weather.Coordinates{Lat: 39.7990, Lon: -89.6440}},
		{Name: "Springfield", Country: "US", State: "Missouri", Coords: weather.Coordinates{Lat: 37.2090, Lon: -93.2923}},
		{Name: "Springfield", Country: "CA", Coords: weather.Coordinates{Lat: 49.9167, Lon: -96.9833}},
	}
}

func TestDBStoreDisambiguationPreservesCandidateOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	put := PendingDisambiguation{Candidates: storedCandidates(), ForSubscription: true}
	require.NoError(t, store.PutDisambiguation(ctx, 1001, 42, put))

	got, err := store.GetDisambiguation(ctx, 1001, 42)
	require.NoError(t, err)
	assert.Equal(t, put.Candidates, got.Candidates,
		"candidate at index i must resolve to the same city the user saw")
	assert.True(t, got.ForSubscription)
}

func TestDBStoreDisambiguationReplacedOnSameKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutDisambiguation(ctx, 1001, 42,
		PendingDisambiguation{Candidates: storedCandidates()}))
	second := PendingDisambiguation{Candidates: storedCandidates()[:1], ForSubscription: true}
	require.NoError(t, store.PutDisambiguation(ctx, 1001, 42, second))

	got, err := store.GetDisambiguation(ctx, 1001, 42)
	require.NoError(t, err)
	assert.Equal(t, second.Candidates, got.Candidates)
	assert.True(t, got.ForSubscription)
}

func TestDBStoreMissingEntries(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetDisambiguation(ctx, 1001, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetForecast(ctx, 1001, 77)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDBStoreForecastRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	coords := weather.Coordinates{Lat: 48.8589, Lon: 2.3200}
	entry := ForecastEntry{
		Verbosity: database.VerbosityShort,
		Pages: []forecast.DayPage{{
			Date:    "2026-03-14",
			City:    "Paris",
			Country: "FR",
			Coords:  coords,
			Samples: []weather.Sample{{
				Time:        time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
				Temp:        11.5,
				FeelsLike:   10.2,
				Humidity:    70,
				Description: "scattered clouds",
			}},
		}},
	}
	require.NoError(t, store.PutForecast(ctx, 1001, 77, entry))

	got, err := store.GetForecast(ctx, 1001, 77)
	require.NoError(t, err)
	assert.Equal(t, entry.Verbosity, got.Verbosity)
	assert.Equal(t, entry.Pages, got.Pages)
}

func TestDBStoreEntriesKeyedPerMessage(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutDisambiguation(ctx, 1001, 42,
		PendingDisambiguation{Candidates: storedCandidates()}))
	require.NoError(t, store.PutDisambiguation(ctx, 1001, 43,
		PendingDisambiguation{Candidates: storedCandidates()[:1]}))

	got, err := store.GetDisambiguation(ctx, 1001, 42)
	require.NoError(t, err)
	assert.Len(t, got.Candidates, 3)

	_, err = store.GetDisambiguation(ctx, 2002, 42)
	assert.ErrorIs(t, err, ErrNotFound, "another chat's message id must not collide")
}

func TestDBStoreSweepDeletesOnlyExpiredRows(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutDisambiguation(ctx, 1001, 42,
		PendingDisambiguation{Candidates: storedCandidates()}))
	require.NoError(t, store.PutForecast(ctx, 1001, 77, ForecastEntry{Verbosity: database.VerbosityFull}))

	stale := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&database.Disambiguation{}).
		Where("chat_id = ? AND message_id = ?", 1001, 42).
		Update("created_at", stale).Error)

	require.NoError(t, store.Sweep(ctx, time.Now().UTC().Add(-24*time.Hour)))

	_, err := store.GetDisambiguation(ctx, 1001, 42)
	assert.ErrorIs(t, err, ErrNotFound, "expired entry must be swept")

	_, err = store.GetForecast(ctx, 1001, 77)
	assert.NoError(t, err, "fresh entry must survive the sweep")
}
