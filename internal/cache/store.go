// Package cache keeps the volatile halves of an in-flight conversation:
// pending city disambiguations and bucketed forecast pages, both keyed
// by (chat, message). Entries are read back by a later button press and
// expire after a retention window.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/weatherhelper/weatherbot/internal/forecast"
	"github.com/weatherhelper/weatherbot/internal/weather"
)

// ErrNotFound marks an entry that expired, was never written, or was
// written before a restart with a non-persistent backend.
var ErrNotFound = errors.New("cache: entry not found")

// PendingDisambiguation is the candidate list of one geocoding lookup,
// stored verbatim so that "candidate at index i" resolves to the same
// city the user saw.
type PendingDisambiguation struct {
	Candidates      []weather.Candidate `json:"candidates"`
	ForSubscription bool                `json:"for_subscription"`
}

// ForecastEntry is the page sequence of one forecast lookup plus the
// rendering verbosity it was created with.
type ForecastEntry struct {
	Pages     []forecast.DayPage `json:"pages"`
	Verbosity string             `json:"verbosity"`
}

// Store is implemented by the Postgres-rows backend (expired by the
// periodic sweep) and the Redis backend (expired by TTL).
type Store interface {
	PutDisambiguation(ctx context.Context, chatID int64, messageID int, d PendingDisambiguation) error
	GetDisambiguation(ctx context.Context, chatID int64, messageID int) (*PendingDisambiguation, error)
	PutForecast(ctx context.Context, chatID int64, messageID int, entry ForecastEntry) error
	GetForecast(ctx context.Context, chatID int64, messageID int) (*ForecastEntry, error)
	// Sweep deletes entries created before the cutoff. Backends that
	// expire entries on their own may treat it as a no-op.
	Sweep(ctx context.Context, olderThan time.Time) error
}
