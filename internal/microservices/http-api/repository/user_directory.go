package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"animeschedule/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// UserDirectory answers which IANA zone a user's schedule is computed in.
// The value is returned unvalidated; callers load it through the zone
// registry.
type UserDirectory interface {
	TimeZoneOf(ctx context.Context, userID string) (string, error)
	Invalidate(ctx context.Context, userID string) error
}

type zoneCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

var errCacheMiss = errors.New("cache miss")

type redisZoneCache struct {
	client redis.Cmdable
}

func (c *redisZoneCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", errCacheMiss
	}
	return v, err
}

func (c *redisZoneCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisZoneCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

type userDirectory struct {
	users   UserRepository
	cache   zoneCache
	ttl     time.Duration
	metrics metrics.Provider
	logger  zerolog.Logger
}

// NewUserDirectory fronts the user table with redis. A nil client reads
// straight from postgres.
func NewUserDirectory(users UserRepository, client redis.Cmdable, ttl time.Duration, m metrics.Provider, logger zerolog.Logger) UserDirectory {
	var cache zoneCache
	if client != nil {
		cache = &redisZoneCache{client: client}
	}
	return newUserDirectory(users, cache, ttl, m, logger)
}

func newUserDirectory(users UserRepository, cache zoneCache, ttl time.Duration, m metrics.Provider, logger zerolog.Logger) *userDirectory {
	if m == nil {
		m = metrics.Noop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &userDirectory{users: users, cache: cache, ttl: ttl, metrics: m, logger: logger}
}

func timeZoneKey(userID string) string {
	return fmt.Sprintf("user:%s:timezone", userID)
}

func (d *userDirectory) TimeZoneOf(ctx context.Context, userID string) (string, error) {
	key := timeZoneKey(userID)

	if d.cache != nil {
		zone, err := d.cache.Get(ctx, key)
		switch {
		case err == nil && zone != "":
			d.metrics.IncTimeZoneCache(true)
			return zone, nil
		case err != nil && !errors.Is(err, errCacheMiss):
			// redis trouble must not take schedules down with it
			d.logger.Warn().Err(err).Str("user_id", userID).Msg("timezone cache read failed")
		}
		d.metrics.IncTimeZoneCache(false)
	}

	user, err := d.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, key, user.TimeZone, d.ttl); err != nil {
			d.logger.Warn().Err(err).Str("user_id", userID).Msg("timezone cache write failed")
		}
	}
	return user.TimeZone, nil
}

func (d *userDirectory) Invalidate(ctx context.Context, userID string) error {
	if d.cache == nil {
		return nil
	}
	if err := d.cache.Del(ctx, timeZoneKey(userID)); err != nil {
		return fmt.Errorf("invalidate timezone cache: %w", err)
	}
	return nil
}
