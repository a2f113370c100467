package main

// Apply or inspect the document schema:
//   go run ./cmd/migrate [up|down|status|version]

import (
	"context"
	"fmt"
	"os"

	"doctranslate-backend/internal/shared/config"
	"doctranslate-backend/internal/shared/storage/db"
	"doctranslate-backend/internal/shared/telemetry"
)

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if err := run(context.Background(), command); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "error": err.Error()})
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"command": command})
}

func run(ctx context.Context, command string) error {
	cfg := config.Load()
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer sqlDB.Close()
	return db.Migrate(ctx, sqlDB, command)
}
