package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"mediastat/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLeaseTTL = 30 * time.Second

var (
	renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)
)

// RedisLocker holds keys across processes with SET NX. Leases are renewed
// every ttl/2 until released so a crashed holder frees the key after ttl.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	log    *logger.Logger
}

func NewRedisLocker(client redis.UniversalClient, prefix string, log *logger.Logger) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix, log: log}
}

func (r *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	fullKey := r.prefix + key
	token := uuid.NewString()

	_, err := r.client.SetArgs(ctx, fullKey, token, redis.SetArgs{Mode: "NX", TTL: ttl}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	lease := &redisLease{
		locker: r,
		key:    fullKey,
		token:  token,
		ttl:    ttl,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go lease.keepAlive()
	return lease, true, nil
}

type redisLease struct {
	locker *RedisLocker
	key    string
	token  string
	ttl    time.Duration
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (l *redisLease) keepAlive() {
	defer close(l.done)
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.ttl/2)
			err := renewScript.Run(ctx, l.locker.client, []string{l.key}, l.token, l.ttl.Milliseconds()).Err()
			cancel()
			if err != nil {
				l.locker.log.Warn("Failed to renew lock lease",
					logger.StringField("key", l.key),
					logger.ErrorField(err),
				)
			}
		}
	}
}

func (l *redisLease) Release() {
	l.once.Do(func() {
		close(l.stop)
		<-l.done

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.locker.client, []string{l.key}, l.token).Err(); err != nil {
			l.locker.log.Warn("Failed to release lock lease",
				logger.StringField("key", l.key),
				logger.ErrorField(err),
			)
		}
	})
}
