package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eventbot/internal/model"
	"eventbot/internal/queue"
	"eventbot/internal/transport"
	"eventbot/pkg/logger"

	"go.uber.org/zap"
)

const deliverTimeout = 10 * time.Second

// Handler turns one update into a reply; *bot.Engine satisfies it.
type Handler interface {
	Handle(ctx context.Context, u model.Update) *model.Reply
}

type UpdateWorker interface {
	// Start subscribes to the queue and returns; processing stops when ctx is done.
	Start(ctx context.Context) error
	// Wait blocks until every processing goroutine has returned.
	Wait()
}

type UpdateWorkerImpl struct {
	handler   Handler
	queue     queue.UpdateQueue
	messenger transport.Messenger
	workers   int
	timeout   time.Duration
	wg        sync.WaitGroup
	logger    *zap.Logger
}

func NewUpdateWorker(handler Handler, q queue.UpdateQueue, messenger transport.Messenger, workers int, timeout time.Duration) UpdateWorker {
	if workers < 1 {
		workers = 1
	}
	return &UpdateWorkerImpl{
		handler:   handler,
		queue:     q,
		messenger: messenger,
		workers:   workers,
		timeout:   timeout,
		logger:    logger.WithComponent("worker"),
	}
}

func (w *UpdateWorkerImpl) Start(ctx context.Context) error {
	deliveries, err := w.queue.SubscribeUpdates(ctx)
	if err != nil {
		return fmt.Errorf("subscribe updates: %w", err)
	}

	// updates from different users run in parallel; a user's own flow is
	// serialized by the session lock inside the handler
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for d := range deliveries {
				w.process(ctx, d)
			}
		}()
	}
	return nil
}

func (w *UpdateWorkerImpl) Wait() {
	w.wg.Wait()
}

func (w *UpdateWorkerImpl) process(ctx context.Context, d queue.Delivery) {
	u := *d.Data
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Handler panicked",
				zap.String("trace_id", u.TraceID),
				zap.Int("update_id", u.UpdateID),
				zap.Any("panic", r),
			)
			// a replay would panic again
			d.Nack(false)
		}
	}()

	handleCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	reply := w.handler.Handle(handleCtx, u)

	// the handler may have used its whole budget; the reply gets a fresh one
	deliverCtx, cancelDeliver := context.WithTimeout(context.WithoutCancel(ctx), deliverTimeout)
	defer cancelDeliver()
	w.deliver(deliverCtx, u, reply)
	// side effects already happened, so a failed reply is not retried
	d.Ack()
}

func (w *UpdateWorkerImpl) deliver(ctx context.Context, u model.Update, reply *model.Reply) {
	if u.Kind == model.UpdateCallback && u.CallbackID != "" {
		notice := ""
		if reply != nil {
			notice = reply.Notice
		}
		// answered even without a notice so the client stops its spinner
		if err := w.messenger.Answer(ctx, u.CallbackID, notice); err != nil {
			w.logFailure(u, "answer", err)
		}
	}
	if reply == nil || reply.Text == "" {
		return
	}

	if reply.Edit && u.MessageID != 0 {
		if err := w.messenger.Edit(ctx, u.ChatID, u.MessageID, reply.Message()); err != nil {
			w.logFailure(u, "edit", err)
		}
		return
	}
	chatID := u.ChatID
	if u.Kind == model.UpdateCallback {
		// the pressed card may be a channel post; answers go to the presser privately
		chatID = u.Sender.UserID
	}
	if _, err := w.messenger.Send(ctx, chatID, reply.Message()); err != nil {
		w.logFailure(u, "send", err)
	}
}

func (w *UpdateWorkerImpl) logFailure(u model.Update, op string, err error) {
	w.logger.Warn("Reply delivery failed",
		zap.String("trace_id", u.TraceID),
		zap.String("op", op),
		zap.Int64("chat_id", u.ChatID),
		zap.Error(err),
	)
}
