package main

import (
	"context"
	"fmt"

	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/database/migration"
)

func runMigrate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Database.Driver != config.DatabaseDriverPostgres {
		return fmt.Errorf("migrate requires the %q database driver, got %q", config.DatabaseDriverPostgres, cfg.Database.Driver)
	}

	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host)
}
