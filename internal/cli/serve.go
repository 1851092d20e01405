package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"eventbot/config"
	"eventbot/internal/bot"
	"eventbot/internal/database"
	"eventbot/internal/handler"
	"eventbot/internal/notify"
	"eventbot/internal/queue"
	"eventbot/internal/repository"
	"eventbot/internal/service"
	"eventbot/internal/session"
	"eventbot/internal/telegram"
	"eventbot/internal/worker"
	"eventbot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	memoryQueueSize = 256
	shutdownTimeout = 10 * time.Second
)

type ServeOptions struct {
	Mode    string
	Migrate bool
}

func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot",
		Long: `Run the bot until interrupted. In polling mode updates are pulled from
the Bot API; in webhook mode they arrive on POST /api/v1/webhook. The HTTP
server (health check, optional admin API) runs in both modes.

Example:
  eventbot serve
  eventbot serve --mode webhook --migrate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if opts.Mode != "" {
				cfg.Bot.Mode = opts.Mode
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "", "update source, polling or webhook (overrides BOT_MODE)")
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "apply the schema before starting")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, opts *ServeOptions) error {
	log := logger.WithComponent("cli")
	gin.SetMode(gin.ReleaseMode)

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if opts.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
	}

	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
	}

	events := service.NewEventService(
		pool,
		repository.NewEventRepository(pool),
		repository.NewRegistrationRepository(pool),
		repository.NewRsvpRepository(pool),
	)

	api, err := telegram.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return err
	}
	messenger := telegram.NewClient(api)

	updates, err := newUpdateQueue(ctx, cfg, rdb)
	if err != nil {
		return err
	}

	engine := bot.NewEngine(
		events,
		newTracker(cfg, rdb),
		notify.NewDispatcher(events, messenger, cfg.Runtime.NotifyConcurrency, cfg.Runtime.NotifyTimeout),
		messenger,
		cfg.Bot.AdminIDs,
		cfg.Bot.ChannelID,
	)

	router, err := handler.NewRouter(handler.RouterConfig{
		WebhookEnabled: cfg.Bot.Mode == config.ModeWebhook,
		WebhookSecret:  cfg.Server.WebhookSecret,
		AdminAPIToken:  cfg.Server.AdminAPIToken,
		RateLimit:      cfg.Server.RateLimit,
	}, events, updates)
	if err != nil {
		return err
	}

	// any component failing stops the others
	g, gctx := errgroup.WithContext(ctx)

	w := worker.NewUpdateWorker(engine, updates, messenger, cfg.Runtime.WorkerCount, cfg.Runtime.HandleTimeout)
	if err := w.Start(gctx); err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}

	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr), zap.String("mode", cfg.Bot.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Bot.Mode == config.ModePolling {
		g.Go(func() error {
			return telegram.NewPoller(api, updates).Run(gctx)
		})
	}

	err = g.Wait()
	w.Wait()
	log.Info("Shut down")
	return err
}

func newTracker(cfg *config.Config, rdb *redis.Client) session.Tracker {
	if cfg.Runtime.SessionBackend == config.BackendRedis {
		return session.NewRedisTracker(rdb, cfg.Runtime.SessionTTL)
	}
	return session.NewMemoryTracker()
}

func newUpdateQueue(ctx context.Context, cfg *config.Config, rdb *redis.Client) (queue.UpdateQueue, error) {
	if cfg.Runtime.QueueBackend == config.BackendRedis {
		host, _ := os.Hostname()
		return queue.NewRedisStreamUpdateQueue(ctx, rdb, host, nil)
	}
	return queue.NewMemoryUpdateQueue(memoryQueueSize), nil
}
