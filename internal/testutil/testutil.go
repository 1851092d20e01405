// Package testutil connects tests to the local Postgres and Redis test instances.
// Tests using it are skipped when the instances are not running.
package testutil

import (
	"context"
	"testing"

	"eventbot/config"
	"eventbot/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// SetupDB returns a migrated, empty test database.
func SetupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	cfg := config.LoadTestConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(pool.Close)

	ctx := context.Background()
	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	Truncate(t, pool)

	return pool
}

// Truncate empties every table and resets the id sequences.
func Truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE rsvp_responses, registrations, events RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// SetupRedis returns a flushed client on the test redis database.
func SetupRedis(t *testing.T) *redis.Client {
	t.Helper()
	cfg := config.LoadTestConfig()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		t.Skipf("test redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	if err := rdb.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("Failed to flush test redis: %v", err)
	}
	return rdb
}

// CreateEvent inserts an event row directly and returns its id.
func CreateEvent(t *testing.T, pool *pgxpool.Pool, title, date string, active bool) int64 {
	t.Helper()

	query := `
		INSERT INTO events (title, description, event_date, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := pool.QueryRow(context.Background(), query, title, title+" description", date, active).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}
	return id
}
