// Package bootstrap wires the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema brings the schema up according to DB_SCHEMA_MODE.
	ApplySchema bool
	// SeedGroups upserts the built-in groups.
	SeedGroups bool
}

// Runtime holds the connections a command runs on. Redis is nil when unreachable.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// InitRuntime connects to the database and Redis, then optionally applies the
// schema and seeds the built-in groups.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			closeDB(db)
			return nil, fmt.Errorf("schema apply failed: %w", err)
		}
	}

	if opts.SeedGroups {
		groups, err := seed.Groups(ctx, db)
		if err != nil {
			closeDB(db)
			return nil, fmt.Errorf("failed to seed built-in groups: %w", err)
		}
		middleware.Logger.InfoContext(ctx, "Built-in groups ensured", slog.Int("count", len(groups)))
	}

	return &Runtime{DB: db, Redis: cache.Connect(cfg.RedisURL)}, nil
}

// Close releases the database and Redis connections.
func (r *Runtime) Close() {
	closeDB(r.DB)
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
