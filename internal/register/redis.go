package register

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRegister backs Register with a shared Redis instance so the
// rate-limit gate and scheduler lock are honored across every process
// talking to the same REDIS_URL, per spec.md §5.
type RedisRegister struct {
	client *redis.Client
}

// NewRedisRegister dials addr and verifies connectivity before returning.
func NewRedisRegister(addr string) (*RedisRegister, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 0})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("register: connect redis: %w", err)
	}
	return &RedisRegister{client: client}, nil
}

func (r *RedisRegister) GetTimestamp(ctx context.Context, key string) (time.Time, error) {
	raw, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("register: get %s: %w", key, err)
	}
	epoch, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("register: parse %s: %w", key, err)
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC(), nil
}

func (r *RedisRegister) SetTimestamp(ctx context.Context, key string, t time.Time, ttl time.Duration) error {
	epoch := float64(t.UnixNano()) / 1e9
	if err := r.client.Set(ctx, key, epoch, ttl).Err(); err != nil {
		return fmt.Errorf("register: set %s: %w", key, err)
	}
	return nil
}

// TryLock implements the advisory lock via SET NX with a TTL so a crashed
// holder's lock expires instead of wedging the task forever.
func (r *RedisRegister) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context), error) {
	lockKey := "lock:" + key
	ok, err := r.client.SetNX(ctx, lockKey, "1", ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("register: lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	release := func(releaseCtx context.Context) {
		r.client.Del(releaseCtx, lockKey)
	}
	return release, nil
}

func (r *RedisRegister) Close() error {
	return r.client.Close()
}
