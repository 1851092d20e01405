package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventbot/internal/model"
	"eventbot/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey          = "updates:stream"
	ConsumerGroupName  = "update-workers"
	ConsumerNamePrefix = "worker"

	updateField = "update"
)

// RedisStreamConfig tunes redelivery. Zero fields fall back to defaults.
type RedisStreamConfig struct {
	ClaimMinIdleTime   time.Duration // pending entries idle this long are reclaimed
	MaxRetryCount      int           // entries delivered this often are dropped as poison
	ReadGroupBlockTime time.Duration
}

func defaultRedisStreamConfig() RedisStreamConfig {
	return RedisStreamConfig{
		ClaimMinIdleTime:   30 * time.Second,
		MaxRetryCount:      3,
		ReadGroupBlockTime: 2 * time.Second,
	}
}

// RedisStreamUpdateQueue shares inbound updates between processes through a
// consumer group, so a webhook instance and separate workers can be scaled apart.
type RedisStreamUpdateQueue struct {
	client       *redis.Client
	streamKey    string
	groupName    string
	consumerName string
	cfg          RedisStreamConfig
	log          *zap.Logger
}

// NewRedisStreamUpdateQueue creates the consumer group if needed. An empty
// consumerID gets a random one; config may be nil.
func NewRedisStreamUpdateQueue(ctx context.Context, client *redis.Client, consumerID string, config *RedisStreamConfig) (UpdateQueue, error) {
	if consumerID == "" {
		consumerID = uuid.NewString()
	}
	cfg := defaultRedisStreamConfig()
	if config != nil {
		if config.ClaimMinIdleTime > 0 {
			cfg.ClaimMinIdleTime = config.ClaimMinIdleTime
		}
		if config.MaxRetryCount > 0 {
			cfg.MaxRetryCount = config.MaxRetryCount
		}
		if config.ReadGroupBlockTime > 0 {
			cfg.ReadGroupBlockTime = config.ReadGroupBlockTime
		}
	}

	q := &RedisStreamUpdateQueue{
		client:       client,
		streamKey:    StreamKey,
		groupName:    ConsumerGroupName,
		consumerName: fmt.Sprintf("%s:%s", ConsumerNamePrefix, consumerID),
		cfg:          cfg,
		log:          logger.WithComponent("mq"),
	}
	if err := q.ensureConsumerGroup(ctx); err != nil {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	return q, nil
}

func (q *RedisStreamUpdateQueue) ensureConsumerGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.streamKey, q.groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (q *RedisStreamUpdateQueue) PublishUpdate(ctx context.Context, update *model.Update) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.streamKey,
		ID:     "*",
		Values: map[string]interface{}{updateField: string(payload)},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

func (q *RedisStreamUpdateQueue) SubscribeUpdates(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		claimDone := make(chan struct{})
		go func() {
			defer close(claimDone)
			q.runAutoClaim(ctx, out)
		}()
		q.runReadLoop(ctx, out)
		// out must stay open until the claimer stops sending
		<-claimDone
	}()
	return out, nil
}

func (q *RedisStreamUpdateQueue) runReadLoop(ctx context.Context, out chan<- Delivery) {
	for ctx.Err() == nil {
		q.readAndDeliver(ctx, out)
	}
}

// readAndDeliver reads new entries only (">"). Entries this consumer already
// received stay pending and come back through XAUTOCLAIM when not acked.
func (q *RedisStreamUpdateQueue) readAndDeliver(ctx context.Context, out chan<- Delivery) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.groupName,
		Consumer: q.consumerName,
		Streams:  []string{q.streamKey, ">"},
		Count:    10,
		Block:    q.cfg.ReadGroupBlockTime,
	}).Result()

	if errors.Is(err, redis.Nil) {
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		q.log.Error("XReadGroup failed", zap.Error(err))
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
		}
		return
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			if !q.deliver(ctx, out, msg) {
				return
			}
		}
	}
}

// deliver hands msg to out; it reports false once ctx is done.
func (q *RedisStreamUpdateQueue) deliver(ctx context.Context, out chan<- Delivery, msg redis.XMessage) bool {
	d := q.newDelivery(ctx, msg)
	if d == nil {
		return true
	}
	select {
	case out <- *d:
		return true
	case <-ctx.Done():
		return false
	}
}

// isPoison acks and drops entries that were delivered too many times.
func (q *RedisStreamUpdateQueue) isPoison(ctx context.Context, messageID string) bool {
	n, err := q.retryCount(ctx, messageID)
	if err != nil {
		q.log.Warn("Reading retry count failed", zap.String("message_id", messageID), zap.Error(err))
		return false
	}
	if n < q.cfg.MaxRetryCount {
		return false
	}
	q.log.Warn("Dropping poison update",
		zap.String("message_id", messageID),
		zap.Int("retries", n),
		zap.Int("max_retries", q.cfg.MaxRetryCount),
	)
	_ = q.client.XAck(ctx, q.streamKey, q.groupName, messageID).Err()
	return true
}

func (q *RedisStreamUpdateQueue) retryCount(ctx context.Context, messageID string) (int, error) {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: q.streamKey,
		Group:  q.groupName,
		Start:  messageID,
		End:    messageID,
		Count:  1,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	return int(pending[0].RetryCount), nil
}

// runAutoClaim periodically takes over entries left unacked by crashed or slow consumers.
func (q *RedisStreamUpdateQueue) runAutoClaim(ctx context.Context, out chan<- Delivery) {
	ticker := time.NewTicker(q.cfg.ClaimMinIdleTime)
	defer ticker.Stop()
	start := "0-0"

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		claimed, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   q.streamKey,
			Group:    q.groupName,
			Consumer: q.consumerName,
			MinIdle:  q.cfg.ClaimMinIdleTime,
			Count:    10,
			Start:    start,
		}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() == nil {
				q.log.Error("XAutoClaim failed", zap.Error(err))
			}
			continue
		}
		start = next
		if start == "" {
			start = "0-0"
		}

		for _, msg := range claimed {
			if q.isPoison(ctx, msg.ID) {
				continue
			}
			if !q.deliver(ctx, out, msg) {
				return
			}
		}
	}
}

func (q *RedisStreamUpdateQueue) newDelivery(ctx context.Context, msg redis.XMessage) *Delivery {
	payload, ok := msg.Values[updateField].(string)
	if !ok {
		q.log.Warn("Invalid stream entry: missing update field", zap.String("message_id", msg.ID))
		q.ack(ctx, msg.ID)
		return nil
	}
	var update model.Update
	if err := json.Unmarshal([]byte(payload), &update); err != nil {
		q.log.Warn("Unmarshal update failed", zap.String("message_id", msg.ID), zap.Error(err))
		q.ack(ctx, msg.ID)
		return nil
	}

	id := msg.ID
	return &Delivery{
		Data: &update,
		Ack:  func() { q.ack(ctx, id) },
		Nack: func(requeue bool) {
			if requeue {
				// left pending; XAUTOCLAIM picks it up after ClaimMinIdleTime
				q.log.Info("Update nacked, will retry", zap.String("message_id", id), zap.Duration("claim_min_idle", q.cfg.ClaimMinIdleTime))
				return
			}
			q.ack(ctx, id)
		},
	}
}

func (q *RedisStreamUpdateQueue) ack(ctx context.Context, id string) {
	// acks may happen after shutdown started; do not let a cancelled ctx leave entries pending
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := q.client.XAck(ackCtx, q.streamKey, q.groupName, id).Err(); err != nil {
		q.log.Error("XAck failed", zap.String("message_id", id), zap.Error(err))
	}
}
