package handler

import (
	"net/http"

	"eventbot/internal/queue"
	"eventbot/internal/service"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	// WebhookEnabled mounts the webhook route; polling deployments leave it off.
	WebhookEnabled bool
	WebhookSecret  string
	// AdminAPIToken enables the reporting API when set.
	AdminAPIToken string
	RateLimit     string
}

func NewRouter(cfg RouterConfig, events service.EventService, q queue.UpdateQueue) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if cfg.WebhookEnabled {
		limit, err := RateLimit(cfg.RateLimit)
		if err != nil {
			return nil, err
		}
		NewWebhookHandler(q, cfg.WebhookSecret).RegisterRoutes(router, limit)
	}

	if cfg.AdminAPIToken != "" {
		NewAdminHandler(events).RegisterRoutes(router, BearerAuth(cfg.AdminAPIToken))
	}

	return router, nil
}
