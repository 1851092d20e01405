package handler

import (
	"crypto/subtle"
	"net/http"

	"eventbot/internal/queue"
	"eventbot/internal/telegram"
	apperrors "eventbot/pkg/app_errors"
	"eventbot/pkg/logger"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler accepts pushed updates and queues them for the workers.
type WebhookHandler struct {
	queue  queue.UpdateQueue
	secret string
	logger *zap.Logger
}

// NewWebhookHandler builds the handler; an empty secret disables the header check.
func NewWebhookHandler(q queue.UpdateQueue, secret string) *WebhookHandler {
	return &WebhookHandler{
		queue:  q,
		secret: secret,
		logger: logger.WithComponent("handler"),
	}
}

func (h *WebhookHandler) RegisterRoutes(r gin.IRouter, middleware ...gin.HandlerFunc) {
	handlers := append(middleware, h.Receive)
	r.POST("/api/v1/webhook", handlers...)
}

func (h *WebhookHandler) Receive(c *gin.Context) {
	if h.secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader(secretHeader)), []byte(h.secret)) != 1 {
		handleError(c, apperrors.ErrUnauthorized, "Webhook")
		return
	}

	var up tgbotapi.Update
	if err := BindJson(c, &up); err != nil {
		return
	}

	u, ok := telegram.FromTelegram(up)
	if !ok {
		// acknowledged so the platform does not redeliver it
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := h.queue.PublishUpdate(c.Request.Context(), &u); err != nil {
		h.logger.Error("Publish update failed",
			zap.String("trace_id", u.TraceID),
			zap.Int("update_id", u.UpdateID),
			zap.Error(err),
		)
		// non-2xx makes the platform retry later
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Queue unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
