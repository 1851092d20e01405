package handler

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	apperrors "eventbot/pkg/app_errors"
	"eventbot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

// RateLimit limits requests per route; formatted is e.g. "3000-M".
// Webhook traffic arrives from a handful of Telegram addresses, so the bucket is
// shared by all clients of a route instead of being split per ip.
func RateLimit(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}
	store := memory.NewStore()
	return ginlimiter.NewMiddleware(limiter.New(store, rate), ginlimiter.WithKeyGetter(routeKey)), nil
}

func routeKey(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return c.Request.URL.Path
}

// BearerAuth rejects requests whose Authorization header does not carry token.
func BearerAuth(token string) gin.HandlerFunc {
	want := []byte(token)
	return func(c *gin.Context) {
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			handleError(c, apperrors.ErrUnauthorized, "BearerAuth")
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	log := logger.WithComponent("handler")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
