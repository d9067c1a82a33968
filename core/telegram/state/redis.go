package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/vacancybot/core/logger"
)

const defaultRedisPrefix = "vacancybot:session:"

// RedisOptions configures RedisManager.
type RedisOptions struct {
	// Prefix is prepended to the user id to build keys.
	Prefix string
	// TTL expires sessions left untouched; 0 keeps them until cleared.
	TTL time.Duration
}

// RedisManager stores sessions as JSON values so they survive restarts and
// can be shared by several bot instances.
type RedisManager struct {
	client redis.UniversalClient
	opts   RedisOptions
	now    func() time.Time
}

// NewRedisManager wraps an existing client.
func NewRedisManager(client redis.UniversalClient, opts RedisOptions) *RedisManager {
	if opts.Prefix == "" {
		opts.Prefix = defaultRedisPrefix
	}
	return &RedisManager{client: client, opts: opts, now: time.Now}
}

func (m *RedisManager) key(userID int64) string {
	return m.opts.Prefix + strconv.FormatInt(userID, 10)
}

// Get returns the stored session or an idle one when the key is absent.
// Values that no longer decode are deleted and reported as idle.
func (m *RedisManager) Get(ctx context.Context, userID int64) (Session, error) {
	raw, err := m.client.Get(ctx, m.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return idleSession(), nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("state: redis get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		logger.LogEvent(ctx, logger.SVCSessions, slog.LevelWarn, "session.corrupt",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		if err := m.Clear(ctx, userID); err != nil {
			return Session{}, err
		}
		return idleSession(), nil
	}
	return s, nil
}

// Save writes s with the configured TTL. Saving an idle session deletes the key.
func (m *RedisManager) Save(ctx context.Context, userID int64, s Session) error {
	if s.Idle() {
		return m.Clear(ctx, userID)
	}
	s.UpdatedAt = m.now().UTC()
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("state: encode session %d: %w", userID, err)
	}
	if err := m.client.Set(ctx, m.key(userID), raw, m.opts.TTL).Err(); err != nil {
		return fmt.Errorf("state: redis set: %w", err)
	}
	return nil
}

// Clear deletes the user's session.
func (m *RedisManager) Clear(ctx context.Context, userID int64) error {
	if err := m.client.Del(ctx, m.key(userID)).Err(); err != nil {
		return fmt.Errorf("state: redis del: %w", err)
	}
	return nil
}

// InProgress reports whether a non-idle session is stored for the user.
func (m *RedisManager) InProgress(ctx context.Context, userID int64) (bool, error) {
	s, err := m.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return !s.Idle(), nil
}
