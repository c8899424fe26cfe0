// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"polyglot/internal/database"
	"polyglot/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Uint64

// NewTestDB opens a private in-memory SQLite database with the full schema.
// The pool is pinned to one connection so every query sees the same database.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(context.Background(), db))
	return db
}

func next() uint64 {
	return seq.Add(1)
}

// CreateUser inserts a user with a unique username and external reference.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	if username == "" {
		username = fmt.Sprintf("user%d", next())
	}
	ref := "ext-" + username
	user := &models.User{Username: username, ExternalRef: &ref}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateLanguage(t testing.TB, db *gorm.DB, name string) *models.Language {
	t.Helper()
	lang := &models.Language{Name: name}
	require.NoError(t, db.Create(lang).Error)
	return lang
}

// CreatePost inserts a post; createdAt may be zero to use the current time.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, lang *models.Language, title string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:     author.ID,
		LanguageID: lang.ID,
		Title:      title,
		Content:    "content of " + title,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func CreateReply(t testing.TB, db *gorm.DB, author *models.User, post *models.Post, content string) *models.Reply {
	t.Helper()
	reply := &models.Reply{UserID: author.ID, PostID: post.ID, Content: content}
	require.NoError(t, db.Create(reply).Error)
	return reply
}

// CountReactions counts ledger rows for (user, target).
func CountReactions(t testing.TB, db *gorm.DB, userID uint, target models.TargetRef) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Reaction{}).
		Where("user_id = ?", userID).
		Where(target.Column()+" = ?", target.ID()).
		Count(&count).Error)
	return count
}
