package service

import (
	"errors"
	"testing"

	"polyglot/internal/models"
	"polyglot/internal/notifications"
	"polyglot/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type services struct {
	votes *VoteService
	posts *PostService
	users *UserService
}

func newServices(db *gorm.DB, rdb *redis.Client) services {
	notifier := notifications.NewNotifier(rdb)
	users := repository.NewUserRepository(db)
	langs := repository.NewLanguageRepository(db)
	posts := repository.NewPostRepository(db)
	replies := repository.NewReplyRepository(db)
	return services{
		votes: NewVoteService(repository.NewReactionRepository(db), replies, notifier),
		posts: NewPostService(posts, replies, langs, rdb, notifier),
		users: NewUserService(users, langs, posts, rdb),
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// assertAppError asserts that err is an AppError with the given code and message.
func assertAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}
