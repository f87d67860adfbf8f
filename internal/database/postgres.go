package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/weatherhelper/weatherbot/internal/config"
)

// Verbosity values for forecast rendering.
const (
	VerbosityFull  = "full"
	VerbosityShort = "short"
)

// User is a Telegram chat identity with per-user settings.
type User struct {
	gorm.Model
	TelegramID int64 `gorm:"uniqueIndex"`
	Username   string
	FirstName  string
	LastName   string
	Language   string `gorm:"size:8"`
	Verbosity  string `gorm:"size:8;default:full"`
}

// Subscription is a daily forecast push. NotifyAt is nil between the
// city step and the time step of the two-phase setup; completed rows
// are uniquely identified by (chat, coordinates, time).
type Subscription struct {
	gorm.Model
	ChatID   int64 `gorm:"index:idx_sub_chat_coords"`
	City     string
	Country  string
	Lat      float64 `gorm:"index:idx_sub_chat_coords"`
	Lon      float64 `gorm:"index:idx_sub_chat_coords"`
	Language string  `gorm:"size:8"`
	NotifyAt *string `gorm:"size:5;index"` // "HH:MM", UTC
}

// Disambiguation persists the candidate list of one geocoding lookup,
// keyed by the chat and the message the candidate buttons reply to.
// Candidates are stored verbatim (order included) as JSON; selection
// is an index into that exact list.
type Disambiguation struct {
	gorm.Model
	ChatID          int64 `gorm:"uniqueIndex:idx_disamb_chat_msg"`
	MessageID       int   `gorm:"uniqueIndex:idx_disamb_chat_msg"`
	Candidates      string
	ForSubscription bool
}

// ForecastPages persists the bucketed day pages of one forecast lookup
// so that pagination presses read the cache instead of re-fetching.
type ForecastPages struct {
	gorm.Model
	ChatID    int64 `gorm:"uniqueIndex:idx_fcpages_chat_msg"`
	MessageID int   `gorm:"uniqueIndex:idx_fcpages_chat_msg"`
	Pages     string
	Verbosity string `gorm:"size:8"`
}

// NewPostgresDB opens the connection and migrates the schema.
func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &Subscription{}, &Disambiguation{}, &ForecastPages{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return db, nil
}
