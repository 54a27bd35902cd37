// Package bootstrap connects the process to its backing stores.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"warbler/internal/config"
	"warbler/internal/credentials"
	"warbler/internal/database"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/seed"
	"warbler/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedPresetPath, when set, is applied to an empty database on startup.
	SeedPresetPath string
}

// InitRuntime connects to the database and Redis. The Redis client is nil
// when Redis is not configured or not reachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := NewRedisClient(cfg.RedisURL)

	if opts.SeedPresetPath != "" {
		if err := seedIfEmpty(context.Background(), cfg, db, opts.SeedPresetPath); err != nil {
			return nil, nil, fmt.Errorf("failed to seed from %s: %w", opts.SeedPresetPath, err)
		}
	}

	return db, rdb, nil
}

func seedIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB, path string) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		middleware.Logger.Info("database already populated, skipping seed", slog.Int64("users", count))
		return nil
	}

	preset, err := seed.LoadPreset(path)
	if err != nil {
		return err
	}

	store := repository.NewStore(db)
	users := service.NewUserService(store, credentials.NewHasher(cfg.BcryptCost))
	_, err = seed.NewSeeder(store, users, service.NewMessageService(store)).Apply(ctx, preset)
	return err
}
