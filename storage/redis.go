package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/hidenkeys/frontdesk/scheduler"
	"github.com/redis/go-redis/v9"
)

// RedisLocker hands out short-lived distributed locks for scheduler sweeps.
type RedisLocker struct {
	rdb    *redis.Client
	locker *redislock.Client
}

func NewRedisLocker(ctx context.Context, addr, password string) (*RedisLocker, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return &RedisLocker{rdb: rdb, locker: redislock.New(rdb)}, nil
}

func (l *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, scheduler.ErrLockHeld
	}
	if err != nil {
		return nil, err
	}
	return lock.Release, nil
}

func (l *RedisLocker) Close() error {
	return l.rdb.Close()
}
