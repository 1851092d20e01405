package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Bot      BotConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Runtime  RuntimeConfig
}

type BotConfig struct {
	Token     string
	AdminIDs  []int64
	ChannelID string
	Mode      string
}

type ServerConfig struct {
	Addr          string
	WebhookSecret string
	AdminAPIToken string
	RateLimit     string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RuntimeConfig struct {
	SessionBackend    string
	SessionTTL        time.Duration
	QueueBackend      string
	WorkerCount       int
	HandleTimeout     time.Duration
	NotifyConcurrency int
	NotifyTimeout     time.Duration
}

var AppConfig *Config

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	adminIDs, err := ParseAdminIDs(getEnv("ADMIN_IDS", ""))
	if err != nil {
		return nil, err
	}

	redisConfig, err := GetRedisConfig()
	if err != nil {
		return nil, err
	}

	runtime, err := GetRuntimeConfig()
	if err != nil {
		return nil, err
	}

	AppConfig = &Config{
		Bot: BotConfig{
			Token:     getEnv("BOT_TOKEN", ""),
			AdminIDs:  adminIDs,
			ChannelID: getEnv("CHANNEL_ID", ""),
			Mode:      getEnv("BOT_MODE", ModePolling),
		},
		Server: ServerConfig{
			Addr:          getEnv("HTTP_ADDR", ":8080"),
			WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
			AdminAPIToken: getEnv("ADMIN_API_TOKEN", ""),
			RateLimit:     getEnv("RATE_LIMIT", "3000-M"),
		},
		Database: GetDatabaseConfig(),
		Redis:    redisConfig,
		Runtime:  runtime,
	}

	return AppConfig, nil
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // test postgres
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // test redis
		Password: "",
		DB:       1,
	}

	return &Config{
		Bot: BotConfig{
			AdminIDs: []int64{1},
			Mode:     ModePolling,
		},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Runtime: RuntimeConfig{
			SessionBackend:    BackendMemory,
			SessionTTL:        time.Hour,
			QueueBackend:      BackendMemory,
			WorkerCount:       1,
			HandleTimeout:     5 * time.Second,
			NotifyConcurrency: 2,
			NotifyTimeout:     time.Second,
		},
	}
}

// Validate checks the settings required to run the bot.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return errors.New("BOT_TOKEN environment variable is required")
	}
	if len(c.Bot.AdminIDs) == 0 {
		return errors.New("ADMIN_IDS environment variable is required")
	}
	switch c.Bot.Mode {
	case ModePolling, ModeWebhook:
	default:
		return fmt.Errorf("BOT_MODE must be %q or %q, got %q", ModePolling, ModeWebhook, c.Bot.Mode)
	}
	for name, backend := range map[string]string{
		"SESSION_BACKEND": c.Runtime.SessionBackend,
		"QUEUE_BACKEND":   c.Runtime.QueueBackend,
	} {
		if backend != BackendMemory && backend != BackendRedis {
			return fmt.Errorf("%s must be %q or %q, got %q", name, BackendMemory, BackendRedis, backend)
		}
	}
	return nil
}

// UsesRedis reports whether any component needs a redis connection.
func (c *Config) UsesRedis() bool {
	return c.Runtime.SessionBackend == BackendRedis || c.Runtime.QueueBackend == BackendRedis
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "eventbot"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() (RedisConfig, error) {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}, nil
}

func GetRuntimeConfig() (RuntimeConfig, error) {
	workers, err := strconv.Atoi(getEnv("WORKER_COUNT", "4"))
	if err != nil || workers < 1 {
		return RuntimeConfig{}, fmt.Errorf("invalid WORKER_COUNT %q", os.Getenv("WORKER_COUNT"))
	}
	concurrency, err := strconv.Atoi(getEnv("NOTIFY_CONCURRENCY", "8"))
	if err != nil || concurrency < 1 {
		return RuntimeConfig{}, fmt.Errorf("invalid NOTIFY_CONCURRENCY %q", os.Getenv("NOTIFY_CONCURRENCY"))
	}
	handleTimeout, err := time.ParseDuration(getEnv("HANDLE_TIMEOUT", "30s"))
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("invalid HANDLE_TIMEOUT: %w", err)
	}
	notifyTimeout, err := time.ParseDuration(getEnv("NOTIFY_TIMEOUT", "10s"))
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("invalid NOTIFY_TIMEOUT: %w", err)
	}
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	return RuntimeConfig{
		SessionBackend:    getEnv("SESSION_BACKEND", BackendMemory),
		SessionTTL:        sessionTTL,
		QueueBackend:      getEnv("QUEUE_BACKEND", BackendMemory),
		WorkerCount:       workers,
		HandleTimeout:     handleTimeout,
		NotifyConcurrency: concurrency,
		NotifyTimeout:     notifyTimeout,
	}, nil
}

// ParseAdminIDs parses a comma separated list of numeric user ids.
func ParseAdminIDs(raw string) ([]int64, error) {
	ids := make([]int64, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
