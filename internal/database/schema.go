package database

import (
	"context"
	"fmt"
	"log/slog"

	"polyglot/internal/config"
	"polyglot/internal/middleware"

	"gorm.io/gorm"
)

const (
	SchemaModeSQL  = "sql"
	SchemaModeAuto = "auto"
)

// reactionIndexes enforce one reaction per user per target. They are partial
// indexes, which GORM struct tags cannot express, so both schema modes create them.
var reactionIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_user_post ON likes (user_id, post_id) WHERE reply_id IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_user_reply ON likes (user_id, reply_id) WHERE post_id IS NULL`,
}

type SchemaStatus struct {
	Mode              string
	Environment       string
	AppliedVersions   []int
	PendingMigrations []Migration
}

// SchemaMode resolves the effective schema mode: explicit config wins, otherwise
// production-like environments use SQL migrations and everything else AutoMigrate.
func SchemaMode(cfg *config.Config) string {
	switch cfg.DBSchemaMode {
	case SchemaModeSQL, SchemaModeAuto:
		return cfg.DBSchemaMode
	}
	if cfg.IsProduction() {
		return SchemaModeSQL
	}
	return SchemaModeAuto
}

// AutoMigrate creates or updates tables from the GORM models and adds the reaction indexes.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return EnsureReactionIndexes(ctx, db)
}

func EnsureReactionIndexes(ctx context.Context, db *gorm.DB) error {
	for _, stmt := range reactionIndexes {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure reaction index: %w", err)
		}
	}
	return nil
}

func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	mode := SchemaMode(cfg)
	switch mode {
	case SchemaModeSQL:
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	case SchemaModeAuto:
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("mode", mode), slog.String("env", cfg.Env))
		if err := AutoMigrate(ctx, db); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
	return nil
}

func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	status := &SchemaStatus{
		Mode:        SchemaMode(cfg),
		Environment: cfg.Env,
	}
	if status.Mode != SchemaModeSQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied

	appliedSet := make(map[int]bool, len(applied))
	for _, version := range applied {
		appliedSet[version] = true
	}
	for _, m := range GetMigrations() {
		if !appliedSet[m.Version] {
			status.PendingMigrations = append(status.PendingMigrations, m)
		}
	}
	return status, nil
}
