package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"eventbot/internal/cli"
	"eventbot/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		logger.WithComponent("cli").Error("Command failed", zap.Error(err))
	}
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
