// Package lock serializes work on a named key, either inside one process or across replicas through Redis.
package lock

import (
	"context"
	"errors"
	"time"

	"roombook/config"
	"roombook/infras/otel"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var ErrNotAcquired = errors.New("lock not acquired before deadline")

// Unlock releases a held key. It is safe to call more than once.
type Unlock func()

type Locker interface {
	// Lock blocks until key is held, ctx is done, or the wait deadline passes.
	Lock(ctx context.Context, key string) (Unlock, error)
}

// New picks the implementation named by BOOKING_LOCK_DRIVER. client may be nil for the local driver.
func New(cfg *config.Config, client *redis.Client, otl otel.Otel) Locker {
	wait := time.Duration(cfg.Booking.Lock.WaitMillis) * time.Millisecond
	ttl := time.Duration(cfg.Booking.Lock.TTLSeconds) * time.Second

	if cfg.Booking.Lock.Driver == config.LockDriverRedis && client != nil {
		log.Info().Dur("ttl", ttl).Dur("wait", wait).Msg("using redis booking lock")

		return NewRedis(client, otl, ttl, wait)
	}

	log.Info().Dur("wait", wait).Msg("using in-process booking lock")

	return NewLocal(otl, wait)
}
