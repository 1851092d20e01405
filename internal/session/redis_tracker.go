package session

import (
	"context"
	"fmt"
	"time"

	"eventbot/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	lockTTL       = 30 * time.Second
	lockRetryWait = 25 * time.Millisecond
)

// releaseScript deletes the lock only when it still holds our token.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisTracker stores sessions as redis hashes so they survive restarts and are
// shared by every worker process.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTracker expires idle conversations after ttl.
func NewRedisTracker(client *redis.Client, ttl time.Duration) *RedisTracker {
	return &RedisTracker{client: client, ttl: ttl}
}

func (t *RedisTracker) getStateKey(id int64) string {
	return fmt.Sprintf("session:%d:state", id)
}

func (t *RedisTracker) getLockKey(id int64) string {
	return fmt.Sprintf("session:%d:lock", id)
}

func (t *RedisTracker) Get(ctx context.Context, id int64) (State, error) {
	result, err := t.client.HGetAll(ctx, t.getStateKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return Idle{}, nil
	}

	state, err := fromFields(result)
	if err != nil {
		// a corrupt entry must not wedge the admin; start over
		logger.WithComponent("session").Warn("Dropping unreadable session",
			zap.Int64("user_id", id),
			zap.Error(err),
		)
		return Idle{}, t.Clear(ctx, id)
	}
	return state, nil
}

func (t *RedisTracker) Set(ctx context.Context, id int64, state State) error {
	if IsIdle(state) {
		return t.Clear(ctx, id)
	}

	key := t.getStateKey(id)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields(state))
		if t.ttl > 0 {
			pipe.Expire(ctx, key, t.ttl)
		}
		return nil
	})
	return err
}

func (t *RedisTracker) Clear(ctx context.Context, id int64) error {
	return t.client.Del(ctx, t.getStateKey(id)).Err()
}

func (t *RedisTracker) Lock(ctx context.Context, id int64) (func(), error) {
	key := t.getLockKey(id)
	token := uuid.NewString()

	for {
		ok, err := t.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("session lock for %d: %w", id, ctx.Err())
			}
			return nil, err
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("session lock for %d: %w", id, ctx.Err())
		case <-time.After(lockRetryWait):
		}
	}

	return func() {
		// the caller's ctx may already be done; release on a fresh one
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, t.client, []string{key}, token).Err(); err != nil {
			logger.WithComponent("session").Error("Failed to release session lock",
				zap.Int64("user_id", id),
				zap.Error(err),
			)
		}
	}, nil
}
