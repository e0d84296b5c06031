// Command migrate applies the embedded goose migrations to DATABASE_URL.
//
//	go run ./cmd/migrate [up|down|status|reset]
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hirevision-backend/internal/shared/config"
	"hirevision-backend/internal/shared/storage/db"
	"hirevision-backend/internal/shared/telemetry"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := db.MigrateUp
	if len(args) > 0 {
		command = args[0]
	}
	switch command {
	case db.MigrateUp, db.MigrateDown, db.MigrateStatus, db.MigrateReset:
	default:
		telemetry.Error("migrate.usage", map[string]any{"command": command, "want": "up|down|status|reset"})
		return 2
	}

	cfg := config.Load()
	pool, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		return 1
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, command); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "error": err.Error()})
		return 1
	}
	fields := map[string]any{"command": command}
	if version, err := db.Version(ctx, pool); err == nil {
		fields["version"] = version
	}
	telemetry.Info("migrate.done", fields)
	return 0
}
