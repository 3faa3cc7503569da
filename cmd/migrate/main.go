package main

import (
	"context"
	"log/slog"
	"os"

	"skillmarket/internal/infra/db"
	"skillmarket/internal/pkg/config"
)

const defaultMigrationsPath = "db/migrations"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	path := defaultMigrationsPath
	if p := os.Getenv("MIGRATIONS_PATH"); p != "" {
		path = p
	}

	ctx := context.Background()
	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	migrator, err := db.NewMigrator(pool, path)
	if err != nil {
		slog.Error("failed to init migrator", "error", err)
		os.Exit(1)
	}
	defer func() { _ = migrator.Close() }()

	if err := migrator.Up(ctx); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	version, err := migrator.Version(ctx)
	if err != nil {
		slog.Error("failed to read migration version", "error", err)
		os.Exit(1)
	}

	slog.Info("migrations applied", "version", version)
}
