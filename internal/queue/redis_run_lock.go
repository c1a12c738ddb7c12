package queue

import (
	"context"
	"time"

	"github.com/redis/rueidis"
)

type RedisRunLock struct {
	client rueidis.Client
	key    string
	ttl    time.Duration
}

func NewRedisRunLock(client rueidis.Client, key string, ttl time.Duration) *RedisRunLock {
	return &RedisRunLock{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

func (r *RedisRunLock) Acquire(ctx context.Context) error {
	cmd := r.client.B().Set().Key(r.key).Value("1").Nx().Ex(r.ttl).Build()
	result := r.client.Do(ctx, cmd)

	if err := result.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return ErrLockHeld
		}
		return err
	}

	return nil
}

func (r *RedisRunLock) Release(ctx context.Context) error {
	cmd := r.client.B().Del().Key(r.key).Build()
	return r.client.Do(ctx, cmd).Error()
}
