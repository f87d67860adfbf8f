package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/weatherhelper/weatherbot/internal/apperrors"
)

// RedisStore keeps conversation state in Redis with a TTL equal to the
// retention window, so no sweep pass is needed. Entries written before
// a restart survive as long as Redis does.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(host, port string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func disambKey(chatID int64, messageID int) string {
	return fmt.Sprintf("disamb:%d:%d", chatID, messageID)
}

func forecastKey(chatID int64, messageID int) string {
	return fmt.Sprintf("forecast:%d:%d", chatID, messageID)
}

// PutDisambiguation stores the candidate list for (chat, message).
func (s *RedisStore) PutDisambiguation(ctx context.Context, chatID int64, messageID int, d PendingDisambiguation) error {
	return s.put(ctx, disambKey(chatID, messageID), d)
}

// GetDisambiguation reads the candidate list for (chat, message).
func (s *RedisStore) GetDisambiguation(ctx context.Context, chatID int64, messageID int) (*PendingDisambiguation, error) {
	var d PendingDisambiguation
	if err := s.get(ctx, disambKey(chatID, messageID), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// PutForecast stores the page sequence for (chat, message).
func (s *RedisStore) PutForecast(ctx context.Context, chatID int64, messageID int, entry ForecastEntry) error {
	return s.put(ctx, forecastKey(chatID, messageID), entry)
}

// GetForecast reads the page sequence for (chat, message).
func (s *RedisStore) GetForecast(ctx context.Context, chatID int64, messageID int) (*ForecastEntry, error) {
	var entry ForecastEntry
	if err := s.get(ctx, forecastKey(chatID, messageID), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Sweep is a no-op: the TTL handles expiry.
func (s *RedisStore) Sweep(ctx context.Context, olderThan time.Time) error {
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) put(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, "failed to encode cache entry")
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.KindStore, "failed to write cache entry")
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, key string, out any) error {
	result := s.client.Get(ctx, key)
	if result.Err() == redis.Nil {
		return ErrNotFound
	}
	if result.Err() != nil {
		return apperrors.Wrap(result.Err(), apperrors.KindStore, "failed to read cache entry")
	}
	if err := json.Unmarshal([]byte(result.Val()), out); err != nil {
		return apperrors.Wrap(err, apperrors.KindStateIntegrity, "cached entry is malformed")
	}
	return nil
}
