// Package notify fans a message out to everyone registered for an event.
package notify

import (
	"context"
	"errors"
	"time"

	"eventbot/internal/model"
	"eventbot/internal/render"
	"eventbot/internal/service"
	"eventbot/internal/transport"
	apperrors "eventbot/pkg/app_errors"
	"eventbot/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Dispatcher interface {
	// Notify sends text to every registrant of the event, once each, and reports per-recipient outcomes.
	Notify(ctx context.Context, eventID int64, text string) (*model.DeliveryReport, error)
	// Probe sends a short reachability check to every registrant.
	Probe(ctx context.Context, eventID int64) (*model.DeliveryReport, error)
}

type DispatcherImpl struct {
	events      service.EventService
	messenger   transport.Messenger
	concurrency int
	timeout     time.Duration
	logger      *zap.Logger
}

func NewDispatcher(events service.EventService, messenger transport.Messenger, concurrency int, timeout time.Duration) Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &DispatcherImpl{
		events:      events,
		messenger:   messenger,
		concurrency: concurrency,
		timeout:     timeout,
		logger:      logger.WithComponent("notify"),
	}
}

func (d *DispatcherImpl) Notify(ctx context.Context, eventID int64, text string) (*model.DeliveryReport, error) {
	event, err := d.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return d.dispatch(ctx, event, model.OutgoingMessage{Text: render.Notification(event, text)})
}

func (d *DispatcherImpl) Probe(ctx context.Context, eventID int64) (*model.DeliveryReport, error) {
	event, err := d.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return d.dispatch(ctx, event, model.OutgoingMessage{Text: render.Probe(event)})
}

func (d *DispatcherImpl) dispatch(ctx context.Context, event *model.Event, msg model.OutgoingMessage) (*model.DeliveryReport, error) {
	registrations, err := d.events.GetRegistrations(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	recipients := make([]int64, len(registrations))
	for i, r := range registrations {
		recipients[i] = r.UserID
	}

	results := d.fanOut(ctx, recipients, msg)

	report := &model.DeliveryReport{
		EventID: event.ID,
		Total:   len(recipients),
		Reached: make([]int64, 0, len(recipients)),
		Failed:  make([]model.DeliveryFailure, 0),
	}
	for i, sendErr := range results {
		if sendErr == nil {
			report.Sent++
			report.Reached = append(report.Reached, recipients[i])
			continue
		}
		report.Failed = append(report.Failed, model.DeliveryFailure{
			UserID: recipients[i],
			Reason: Classify(sendErr),
			Detail: sendErr.Error(),
		})
	}

	d.logger.Info("Fan-out finished",
		zap.Int64("event_id", event.ID),
		zap.Int("total", report.Total),
		zap.Int("sent", report.Sent),
		zap.Int("blocked", report.CountReason(model.FailureBlocked)),
		zap.Int("timeout", report.CountReason(model.FailureTimeout)),
		zap.Int("unknown", report.CountReason(model.FailureUnknown)),
	)
	return report, nil
}

// fanOut tries every recipient exactly once. results[i] belongs to recipients[i].
func (d *DispatcherImpl) fanOut(ctx context.Context, recipients []int64, msg model.OutgoingMessage) []error {
	results := make([]error, len(recipients))
	// the caller's deadline covers one interaction, not the whole fan-out; each
	// recipient is bounded by its own timeout instead
	base := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for i, chatID := range recipients {
		i, chatID := i, chatID
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(base, d.timeout)
			defer cancel()

			_, err := d.messenger.Send(sendCtx, chatID, msg)
			if err != nil && errors.Is(sendCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
				err = errors.Join(err, context.DeadlineExceeded)
			}
			results[i] = err
			if err != nil {
				d.logger.Debug("Delivery failed", zap.Int64("chat_id", chatID), zap.Error(err))
			}
			// failures are recorded, never propagated, so one bad recipient cannot stop the rest
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Classify maps a delivery error onto a failure reason.
func Classify(err error) model.FailureReason {
	switch {
	case errors.Is(err, apperrors.ErrRecipientBlocked), errors.Is(err, apperrors.ErrChatNotFound):
		return model.FailureBlocked
	case errors.Is(err, context.DeadlineExceeded):
		return model.FailureTimeout
	default:
		return model.FailureUnknown
	}
}
