package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/harvestBid/internal/shared/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	redisKeyPrefix     = "hb_lock:"
	defaultRetryPeriod = 25 * time.Millisecond
)

// redisStore is the subset of redis commands RedisLocker needs.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	// CompareAndDelete removes key only while it still holds owner.
	CompareAndDelete(ctx context.Context, key, owner string) (bool, error)
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes writers across instances with SETNX + TTL. The TTL bounds how long a
// crashed holder can block an auction.
type RedisLocker struct {
	store       redisStore
	ttl         time.Duration
	waitTimeout time.Duration
	retry       time.Duration
}

func NewRedisLocker(client *redis.Client, ttl, waitTimeout time.Duration) *RedisLocker {
	return newRedisLocker(clientStore{client: client}, ttl, waitTimeout)
}

func newRedisLocker(store redisStore, ttl, waitTimeout time.Duration) *RedisLocker {
	return &RedisLocker{
		store:       store,
		ttl:         ttl,
		waitTimeout: waitTimeout,
		retry:       defaultRetryPeriod,
	}
}

// Lock polls SETNX until the key is owned, the wait budget is spent or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := redisKeyPrefix + key
	owner := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.waitTimeout)
	defer cancel()

	for {
		ok, err := l.store.SetNX(ctx, redisKey, owner, l.ttl)
		if err != nil {
			return nil, fmt.Errorf("lock %s: setnx: %w", key, err)
		}
		if ok {
			return l.unlockFunc(redisKey, owner), nil
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("lock %s: %w", key, ErrLockTimeout)
			}
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// unlockFunc deletes the key only while this holder still owns it, an expired lock may
// already belong to someone else. The check and the delete run as one script.
func (l *RedisLocker) unlockFunc(redisKey, owner string) Unlock {
	released := false
	return func() {
		if released {
			return
		}
		released = true

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if _, err := l.store.CompareAndDelete(ctx, redisKey, owner); err != nil {
			log.Warn("release lock failed", zap.String("key", redisKey), zap.Error(err))
		}
	}
}

// NewRedisClient returns a pinged redis client.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return rc, nil
}

type clientStore struct {
	client *redis.Client
}

func (s clientStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s clientStore) CompareAndDelete(ctx context.Context, key, owner string) (bool, error) {
	n, err := releaseScript.Run(ctx, s.client, []string{key}, owner).Int()
	return n == 1, err
}
