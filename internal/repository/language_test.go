package repository

import (
	"context"
	"testing"
	"time"

	"polyglot/internal/models"
	"polyglot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageRepository_ListAndLookup(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewLanguageRepository(db)

	for _, name := range []string{"spanish", "go", "japanese"} {
		require.NoError(t, repo.Create(ctx, &models.Language{Name: name}))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "go", all[0].Name)
	assert.Equal(t, "spanish", all[2].Name)

	lang, err := repo.GetByName(ctx, "Spanish")
	require.NoError(t, err)
	assert.Equal(t, "spanish", lang.Name)

	byID, err := repo.GetByID(ctx, lang.ID)
	require.NoError(t, err)
	assert.Equal(t, lang.Name, byID.Name)

	_, err = repo.GetByName(ctx, "klingon")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestLanguageRepository_FollowLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewLanguageRepository(db)

	user := testutil.CreateUser(t, db, "")
	spanish := testutil.CreateLanguage(t, db, "spanish")
	french := testutil.CreateLanguage(t, db, "french")

	following, err := repo.IsFollowing(ctx, user.ID, spanish.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, repo.Follow(ctx, user.ID, spanish.ID))
	require.NoError(t, repo.Follow(ctx, user.ID, spanish.ID))
	require.NoError(t, repo.Follow(ctx, user.ID, french.ID))

	var rows int64
	require.NoError(t, db.Model(&models.UserLanguage{}).Where("user_id = ?", user.ID).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)

	followed, err := repo.ListFollowed(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.FollowedLanguage{
		{Value: french.ID, Label: "french"},
		{Value: spanish.ID, Label: "spanish"},
	}, followed)

	require.NoError(t, repo.Unfollow(ctx, user.ID, spanish.ID))
	require.NoError(t, repo.Unfollow(ctx, user.ID, spanish.ID))
	following, err = repo.IsFollowing(ctx, user.ID, spanish.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestReplyRepository_CommentsAndLikedIDs(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	replies := NewReplyRepository(db)
	reactions := NewReactionRepository(db)

	author := testutil.CreateUser(t, db, "author")
	reader := testutil.CreateUser(t, db, "reader")
	lang := testutil.CreateLanguage(t, db, "go")
	post := testutil.CreatePost(t, db, author, lang, "Generics", time.Time{})

	first := &models.Reply{UserID: reader.ID, PostID: post.ID, Content: "first", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	second := &models.Reply{UserID: author.ID, PostID: post.ID, Content: "second", CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, replies.Create(ctx, first))
	require.NoError(t, replies.Create(ctx, second))

	_, err := reactions.Apply(ctx, reader.ID, models.ReplyTarget(second.ID), true)
	require.NoError(t, err)
	_, err = reactions.Apply(ctx, author.ID, models.ReplyTarget(second.ID), true)
	require.NoError(t, err)
	_, err = reactions.Apply(ctx, reader.ID, models.ReplyTarget(first.ID), false)
	require.NoError(t, err)

	comments, err := replies.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "reader", comments[0].Author)
	assert.Equal(t, int64(-1), comments[0].Votes)
	assert.Equal(t, int64(2), comments[1].Votes)
	assert.Equal(t, post.ID, comments[1].PostID)

	raw, err := replies.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, first.ID, raw[0].ID)

	ids, err := replies.LikedReplyIDs(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID}, ids)

	exists, err := replies.Exists(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}
