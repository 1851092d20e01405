package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var L *zap.Logger

func init() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(levelFromEnv(os.Getenv("LOG_LEVEL")))
	var err error
	L, err = config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
}

func levelFromEnv(raw string) zapcore.Level {
	level, err := zapcore.ParseLevel(raw)
	if err != nil || raw == "" {
		return zapcore.InfoLevel
	}
	return level
}

// WithComponent returns a logger tagged with the component field (bot, notify, worker, handler ...).
func WithComponent(component string) *zap.Logger {
	return L.With(zap.String("component", component))
}

// Sync flushes buffered entries; call once on shutdown.
func Sync() {
	_ = L.Sync()
}
