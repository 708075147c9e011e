package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roombook/infras/otel"
	"roombook/shared/constant"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redisKeyPrefix = "lock:"
	retryInterval  = 25 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisClient is the part of *redis.Client the locker uses.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	redis.Scripter
}

type redisLocker struct {
	client RedisClient
	otel   otel.Otel
	ttl    time.Duration
	wait   time.Duration
}

func NewRedis(client RedisClient, otl otel.Otel, ttl, wait time.Duration) Locker {
	return &redisLocker{
		client: client,
		otel:   otl,
		ttl:    ttl,
		wait:   wait,
	}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (_ Unlock, err error) {
	ctx, scope := l.otel.NewScope(ctx, constant.OtelLockScopeName, constant.OtelLockScopeName+".redis.Lock")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	redisKey := redisKeyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	scope.SetAttribute("lock.key", redisKey)

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", redisKey, err)
		}

		if ok {
			break
		}

		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, redisKey)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrNotAcquired, redisKey, ctx.Err())
		case <-time.After(retryInterval):
		}
	}

	var once sync.Once

	return func() {
		once.Do(func() {
			c := context.WithoutCancel(ctx)

			if err := releaseScript.Run(c, l.client, []string{redisKey}, token).Err(); err != nil {
				log.Error().Err(err).Str("key", redisKey).Msg("failed to release lock")
			}
		})
	}, nil
}
