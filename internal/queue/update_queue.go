package queue

import (
	"context"

	"eventbot/internal/model"
)

// Delivery is one queued update handed to a worker. Exactly one of Ack or Nack
// must be called once the update is handled.
type Delivery struct {
	Data *model.Update
	Ack  func()
	Nack func(requeue bool)
}

type UpdateQueue interface {
	PublishUpdate(ctx context.Context, update *model.Update) error
	// SubscribeUpdates streams deliveries until ctx is done, then closes the channel.
	SubscribeUpdates(ctx context.Context) (<-chan Delivery, error)
}

// MemoryUpdateQueue is a buffered channel for single-process deployments.
type MemoryUpdateQueue struct {
	ch chan *model.Update
}

func NewMemoryUpdateQueue(bufferSize int) UpdateQueue {
	return &MemoryUpdateQueue{
		ch: make(chan *model.Update, bufferSize),
	}
}

// PublishUpdate blocks while the buffer is full, until ctx is done.
func (q *MemoryUpdateQueue) PublishUpdate(ctx context.Context, update *model.Update) error {
	select {
	case q.ch <- update:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryUpdateQueue) SubscribeUpdates(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case update := <-q.ch:
				d := Delivery{
					Data: update,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							select {
							case q.ch <- update:
							default:
								// buffer full: drop rather than block the worker
							}
						}
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
