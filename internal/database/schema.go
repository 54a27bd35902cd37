package database

import (
	"context"
	"fmt"
	"log/slog"

	"warbler/internal/config"
	"warbler/internal/middleware"

	"gorm.io/gorm"
)

// UseSQLMigrations reports whether the schema is managed by the embedded SQL
// migrations instead of AutoMigrate.
func UseSQLMigrations(cfg *config.Config) bool {
	return cfg.IsProduction() && cfg.DBDriver != "sqlite"
}

// ApplySchema brings the schema up to date: SQL migrations in production
// postgres, AutoMigrate everywhere else.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if UseSQLMigrations(cfg) {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	}

	if err := AutoMigrate(ctx, db); err != nil {
		return err
	}
	middleware.Logger.Info("Database migration completed", slog.String("mode", "auto"))
	return nil
}

// AutoMigrate creates or updates the tables for every persistent model.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
