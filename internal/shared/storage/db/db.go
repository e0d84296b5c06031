// Package db opens the Postgres pool shared by the repositories and applies
// the embedded schema migrations.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/sethvargo/go-retry"

	"hirevision-backend/internal/shared/telemetry"
)

// Pool sizing and connect behaviour.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	// ConnectAttempts is how many pings are tried before giving up. Postgres
	// often comes up after the API in local compose setups.
	ConnectAttempts int
	RetryDelay      time.Duration
}

// Indirection for tests.
var openDB = sql.Open

// DefaultServerOptions sizes the pool for the long-running API and worker.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 2 * time.Minute,
		PingTimeout:     5 * time.Second,
		ConnectAttempts: 5,
		RetryDelay:      time.Second,
	}
}

// DefaultCLIOptions sizes the pool for one-shot commands.
func DefaultCLIOptions() Options {
	opts := DefaultServerOptions()
	opts.MaxOpenConns = 1
	opts.MaxIdleConns = 1
	opts.ConnectAttempts = 1
	return opts
}

// OptionsFromEnv applies DB_* overrides on top of base. Unparsable values are
// logged and ignored.
func OptionsFromEnv(base Options) Options {
	opts := base
	ints := map[string]*int{
		"DB_MAX_OPEN_CONNS":   &opts.MaxOpenConns,
		"DB_MAX_IDLE_CONNS":   &opts.MaxIdleConns,
		"DB_CONNECT_ATTEMPTS": &opts.ConnectAttempts,
	}
	for key, dst := range ints {
		if raw, ok := lookup(key); ok {
			v, err := strconv.Atoi(raw)
			if err != nil {
				invalidEnv(key, err)
				continue
			}
			*dst = v
		}
	}
	durations := map[string]*time.Duration{
		"DB_CONN_MAX_LIFETIME":  &opts.ConnMaxLifetime,
		"DB_CONN_MAX_IDLE_TIME": &opts.ConnMaxIdleTime,
		"DB_PING_TIMEOUT":       &opts.PingTimeout,
		"DB_RETRY_DELAY":        &opts.RetryDelay,
	}
	for key, dst := range durations {
		if raw, ok := lookup(key); ok {
			v, err := time.ParseDuration(raw)
			if err != nil {
				invalidEnv(key, err)
				continue
			}
			*dst = v
		}
	}
	return opts
}

// Connect opens a pgx-backed pool and pings it, retrying with a constant
// delay up to opts.ConnectAttempts times. Callers share the returned pool.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	pool, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configurePool(pool, opts)

	attempts := opts.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(delay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := pool.PingContext(pingCtx); err != nil {
			telemetry.Info("db.ping_failed", map[string]any{"attempt": attempt, "error": err.Error()})
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := pool.Stats()
	telemetry.Info("db.connected", map[string]any{
		"attempts": attempt,
		"max_open": stats.MaxOpenConnections,
	})
	return pool, nil
}

func configurePool(pool *sql.DB, opts Options) {
	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := opts.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	lifetime := opts.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(maxIdle)
	pool.SetConnMaxLifetime(lifetime)
	if opts.ConnMaxIdleTime > 0 {
		pool.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func lookup(key string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	return raw, raw != ""
}

func invalidEnv(key string, err error) {
	telemetry.Error("db.env_invalid", map[string]any{"key": key, "error": err.Error()})
}
