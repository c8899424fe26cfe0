// Package bootstrap prepares the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"polyglot/internal/cache"
	"polyglot/internal/config"
	"polyglot/internal/database"
	"polyglot/internal/middleware"
	"polyglot/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedLanguages bool
}

// InitRuntime connects to the database and Redis, then runs the requested
// seeding. The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := cache.Connect(ctx, cfg.RedisURL)

	if err := Seed(ctx, db, opts); err != nil {
		_ = database.Close()
		if r != nil {
			_ = r.Close()
		}
		return nil, nil, err
	}
	return db, r, nil
}

// Seed loads the reference data selected by opts into db.
func Seed(ctx context.Context, db *gorm.DB, opts Options) error {
	if !opts.SeedLanguages {
		return nil
	}
	added, err := seed.Languages(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to seed reference languages: %w", err)
	}
	if added > 0 {
		middleware.Logger.InfoContext(ctx, "reference languages seeded", slog.Int64("added", added))
	}
	return nil
}
