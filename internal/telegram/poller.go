package telegram

import (
	"context"

	"eventbot/internal/queue"
	"eventbot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// UpdateSource is the long polling half of *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poller feeds long polled updates into the update queue.
type Poller struct {
	source  UpdateSource
	queue   queue.UpdateQueue
	timeout int
	logger  *zap.Logger
}

func NewPoller(source UpdateSource, q queue.UpdateQueue) *Poller {
	return &Poller{
		source:  source,
		queue:   q,
		timeout: 60,
		logger:  logger.WithComponent("telegram"),
	}
}

// Run blocks until ctx is done or the source closes its channel.
func (p *Poller) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	updates := p.source.GetUpdatesChan(cfg)
	defer p.source.StopReceivingUpdates()

	p.logger.Info("Long polling started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Long polling stopped")
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			u, handled := FromTelegram(up)
			if !handled {
				continue
			}
			if err := p.queue.PublishUpdate(ctx, &u); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.logger.Error("Publish update failed",
					zap.String("trace_id", u.TraceID),
					zap.Int("update_id", u.UpdateID),
					zap.Error(err),
				)
			}
		}
	}
}
