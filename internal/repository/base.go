// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"polyglot/internal/database"
	"polyglot/internal/middleware"

	"gorm.io/gorm"
)

// readDB returns the read replica for listing queries, falling back to the primary.
func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// logDataError records a failed data-access call before it is returned to the caller.
func logDataError(ctx context.Context, table, operation string, err error) {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	middleware.Logger.ErrorContext(ctx, "repository error",
		slog.String("table", table),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern matching s anywhere, with wildcards escaped.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
