// Package scheduler runs the two background jobs: the per-minute
// subscription push and the periodic sweep of abandoned conversation
// state.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/weatherhelper/weatherbot/internal/bot/keyboards"
	"github.com/weatherhelper/weatherbot/internal/bot/render"
	"github.com/weatherhelper/weatherbot/internal/cache"
	"github.com/weatherhelper/weatherbot/internal/database"
	"github.com/weatherhelper/weatherbot/internal/i18n"
	"github.com/weatherhelper/weatherbot/internal/interfaces"
	"github.com/weatherhelper/weatherbot/internal/logger"
	"github.com/weatherhelper/weatherbot/internal/weather"
)

// Sender is the slice of the Telegram API the push job uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Scheduler owns the gocron instance and the job configuration.
type Scheduler struct {
	scheduler *gocron.Scheduler
	api       Sender
	weather   interfaces.WeatherServiceInterface
	subs      interfaces.SubscriptionServiceInterface
	cache     cache.Store

	sweepInterval time.Duration
	retention     time.Duration
	pushTimeout   time.Duration
}

// New creates a scheduler with both jobs configured but not started.
func New(api Sender, weatherSvc interfaces.WeatherServiceInterface, subsSvc interfaces.SubscriptionServiceInterface, store cache.Store,
	sweepInterval, retention, pushTimeout time.Duration) *Scheduler {
	return &Scheduler{
		scheduler:     gocron.NewScheduler(time.UTC),
		api:           api,
		weather:       weatherSvc,
		subs:          subsSvc,
		cache:         store,
		sweepInterval: sweepInterval,
		retention:     retention,
		pushTimeout:   pushTimeout,
	}
}

// Start schedules the push job (every minute, matching subscriptions on
// the current UTC minute) and the sweep job, then starts the scheduler
// in the background.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Minute().Do(s.runPush); err != nil {
		return err
	}

	minutes := int(s.sweepInterval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}
	if _, err := s.scheduler.Every(minutes).Minutes().Do(s.runSweep); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// runPush delivers every subscription whose notification time equals
// the current UTC minute. Pushes fan out concurrently, each with its
// own bounded timeout; one chat's failure never delays another's.
func (s *Scheduler) runPush() {
	ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
	defer cancel()

	due, err := s.subs.DueAt(ctx, time.Now())
	if err != nil {
		logger.Error("scheduler: due-subscription query failed, skipping tick", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}
	logger.Info("scheduler: running push job", "due", len(due))

	var wg sync.WaitGroup
	for _, sub := range due {
		sub := sub
		wg.Add(1)
		go func() {
			defer wg.Done()

			pushCtx, pushCancel := context.WithTimeout(context.Background(), s.pushTimeout)
			defer pushCancel()

			if err := s.push(pushCtx, sub); err != nil {
				logger.Error("scheduler: push failed", "error", err, "chat_id", sub.ChatID)
			}
		}()
	}
	wg.Wait()
}

// push sends one daily notification: a heading plus current conditions
// with the forecast button, so the delivered message supports the same
// button flows as an interactive lookup.
func (s *Scheduler) push(ctx context.Context, sub database.Subscription) error {
	coords := weather.Coordinates{Lat: sub.Lat, Lon: sub.Lon}
	cur, err := s.weather.Current(ctx, coords, sub.Language)
	if err != nil {
		return err
	}

	text := i18n.T(sub.Language, i18n.KeyDailyForecast) + "\n\n" + render.Current(cur, sub.Language)
	msg := tgbotapi.NewMessage(sub.ChatID, text)
	msg.ReplyMarkup = keyboards.Forecast(sub.Language)
	_, err = s.api.Send(msg)
	return err
}

// runSweep garbage-collects conversation state older than the retention
// window: abandoned awaiting-time subscriptions, disambiguations and
// forecast caches.
func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.retention)

	if err := s.subs.CleanupAbandoned(ctx, cutoff); err != nil {
		logger.Error("scheduler: abandoned-subscription cleanup failed", "error", err)
	}
	if err := s.cache.Sweep(ctx, cutoff); err != nil {
		logger.Error("scheduler: conversation cache sweep failed", "error", err)
	}
	logger.Debug("scheduler: sweep completed", "cutoff", cutoff)
}
