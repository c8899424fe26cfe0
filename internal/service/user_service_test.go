package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"polyglot/internal/cache"
	"polyglot/internal/models"
	"polyglot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserService_SignupAndAuthenticate(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := newServices(db, nil).users

	user, err := svc.Signup(ctx, SignupInput{Username: "maria", Email: "Maria@Example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, user.Email)
	assert.Equal(t, "maria@example.com", *user.Email)
	assert.NotEqual(t, "secret1", user.Password)
	assert.False(t, user.PrivateProfile)

	_, err = svc.Signup(ctx, SignupInput{Username: "maria", Email: "other@example.com", Password: "secret1"})
	assertAppError(t, err, models.CodeConflict, "Username already taken")

	_, err = svc.Signup(ctx, SignupInput{Username: "maria2", Email: "maria@example.com", Password: "secret1"})
	assertAppError(t, err, models.CodeConflict, "Email already registered")

	_, err = svc.Signup(ctx, SignupInput{Username: "pedro", Email: "pedro@example.com", Password: "123"})
	assertAppError(t, err, models.CodeValidation, "")

	_, err = svc.Signup(ctx, SignupInput{Username: "pedro", Email: "not-an-email", Password: "secret1"})
	assertAppError(t, err, models.CodeValidation, "invalid email format")

	got, err := svc.Authenticate(ctx, "maria@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	for _, creds := range [][2]string{{"maria@example.com", "wrong"}, {"nobody@example.com", "secret1"}, {"", ""}} {
		_, err := svc.Authenticate(ctx, creds[0], creds[1])
		assertAppError(t, err, models.CodeUnauthenticated, "Invalid credentials")
	}
}

func TestUserService_Reconcile(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := newServices(db, nil).users

	user, created, err := svc.Reconcile(ctx, ReconcileInput{ExternalRef: "uid-1", Username: "maria", Email: "maria@example.com"})
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := svc.Reconcile(ctx, ReconcileInput{ExternalRef: "uid-1", Username: "ignored"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "maria", again.Username)

	_, _, err = svc.Reconcile(ctx, ReconcileInput{ExternalRef: "uid-2", Username: "maria"})
	assertAppError(t, err, models.CodeConflict, "Username already taken")

	_, _, err = svc.Reconcile(ctx, ReconcileInput{ExternalRef: "", Username: "x"})
	assertAppError(t, err, models.CodeUnauthenticated, "")

	_, err = svc.Signup(ctx, SignupInput{Username: "bob", Email: "a@x.io", Password: "secret1"})
	require.NoError(t, err)
	_, _, err = svc.Reconcile(ctx, ReconcileInput{ExternalRef: "u9", Username: "carol", Email: "A@x.io"})
	assertAppError(t, err, models.CodeConflict, "Email already registered")
	_, err = svc.ResolveExternal(ctx, "u9")
	assertAppError(t, err, models.CodeNotFound, "User not found")

	resolved, err := svc.ResolveExternal(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, err = svc.ResolveExternal(ctx, "uid-unknown")
	assertAppError(t, err, models.CodeNotFound, "User not found")
}

func TestUserService_CreateConflictLooksUpTakenValue(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := newServices(db, nil).users

	_, err := svc.Signup(ctx, SignupInput{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	err = svc.createConflict(ctx, gorm.ErrDuplicatedKey, "carol", "bob@example.com")
	assertAppError(t, err, models.CodeConflict, "Email already registered")

	err = svc.createConflict(ctx, gorm.ErrDuplicatedKey, "bob", "carol@example.com")
	assertAppError(t, err, models.CodeConflict, "Username already taken")

	plain := errors.New("connection reset")
	assert.Same(t, plain, svc.createConflict(ctx, plain, "bob", ""))
}

func TestUserService_ProfileAndLikes(t *testing.T) {
	db := testutil.NewTestDB(t)
	mr, rdb := newRedis(t)
	ctx := context.Background()
	all := newServices(db, rdb)
	svc := all.users

	author := testutil.CreateUser(t, db, "author")
	reader := testutil.CreateUser(t, db, "reader")
	lang := testutil.CreateLanguage(t, db, "japanese")
	liked := testutil.CreatePost(t, db, author, lang, "Kanji", time.Time{})
	disliked := testutil.CreatePost(t, db, author, lang, "Kana", time.Time{})

	profile, err := svc.Profile(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserProfile{ID: author.ID, Username: "author", PostCount: 2}, *profile)
	assert.True(t, mr.Exists(cache.ProfileKey(author.ID)))

	_, err = all.posts.CreatePost(ctx, CreatePostInput{UserID: author.ID, Title: "Third", Content: "x", LanguageName: "japanese"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.ProfileKey(author.ID)))

	profile, err = svc.Profile(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), profile.PostCount)

	_, err = svc.Profile(ctx, 9999)
	assertAppError(t, err, models.CodeNotFound, "User not found")

	_, err = all.votes.ApplyReaction(ctx, reader.ID, models.PostTarget(liked.ID), true)
	require.NoError(t, err)
	_, err = all.votes.ApplyReaction(ctx, reader.ID, models.PostTarget(disliked.ID), false)
	require.NoError(t, err)

	likedPosts, err := svc.LikedPosts(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, likedPosts, 1)
	assert.Equal(t, "Kanji", likedPosts[0].Title)
	assert.Equal(t, int64(1), likedPosts[0].Votes)
}

func TestUserService_FollowByName(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := newServices(db, nil).users

	user := testutil.CreateUser(t, db, "")
	lang := testutil.CreateLanguage(t, db, "korean")

	following, err := svc.IsFollowing(ctx, user.ID, "Korean")
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, svc.Follow(ctx, user.ID, "korean"))
	following, err = svc.IsFollowing(ctx, user.ID, "korean")
	require.NoError(t, err)
	assert.True(t, following)

	followed, err := svc.FollowedLanguages(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.FollowedLanguage{{Value: lang.ID, Label: "korean"}}, followed)

	require.NoError(t, svc.Unfollow(ctx, user.ID, "KOREAN"))
	following, err = svc.IsFollowing(ctx, user.ID, "korean")
	require.NoError(t, err)
	assert.False(t, following)

	err = svc.Follow(ctx, user.ID, "klingon")
	assertAppError(t, err, models.CodeNotFound, "Language not found")
}
