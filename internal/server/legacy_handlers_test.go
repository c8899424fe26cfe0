package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"polyglot/internal/auth"
	"polyglot/internal/models"
	"polyglot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacySignupAndLogin(t *testing.T, env *testEnv, username string) (uint, string) {
	t.Helper()
	email := username + "@example.com"

	resp := env.do(t, http.MethodPost, "/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := decodeBody[map[string]any](t, resp)
	require.NotNil(t, user["id"])
	assert.NotContains(t, user, "password")

	resp = env.do(t, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decodeBody[map[string]string](t, resp)
	require.NotEmpty(t, login["token"])

	return uint(user["id"].(float64)), login["token"]
}

func TestLegacyFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	english := testutil.CreateLanguage(t, env.db, "english")
	_, token := legacySignupAndLogin(t, env, "testuser")

	resp := env.do(t, http.MethodPost, "/posts", map[string]any{
		"language_id": english.ID,
		"title":       "Test Post",
		"content":     "This is a test post.",
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	post := decodeBody[models.Post](t, resp)
	assert.NotZero(t, post.ID)
	assert.Equal(t, english.ID, post.LanguageID)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/posts/%d", english.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	posts := decodeBody[[]models.Post](t, resp)
	require.Len(t, posts, 1)
	assert.Equal(t, "Test Post", posts[0].Title)

	resp = env.do(t, http.MethodPost, "/replies", map[string]any{
		"post_id": post.ID,
		"content": "This is a test reply.",
	}, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reply := decodeBody[models.Reply](t, resp)
	assert.Equal(t, post.ID, reply.PostID)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/replies/%d", post.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]models.Reply](t, resp), 1)
}

func TestLegacyLikesToggle(t *testing.T) {
	env := newTestEnv(t, nil)
	lang := testutil.CreateLanguage(t, env.db, "english")
	userID, token := legacySignupAndLogin(t, env, "liker")
	author := testutil.CreateUser(t, env.db, "")
	post := testutil.CreatePost(t, env.db, author, lang, "hello", time.Time{})
	reply := testutil.CreateReply(t, env.db, author, post, "hi")

	like := func(body map[string]any) (int, map[string]any) {
		resp := env.do(t, http.MethodPost, "/likes", body, token)
		return resp.StatusCode, decodeBody[map[string]any](t, resp)
	}

	status, result := like(map[string]any{"post_id": post.ID, "reply_id": nil, "like_type": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "inserted", result["transition"])
	assert.Equal(t, float64(1), result["votes"])

	status, result = like(map[string]any{"post_id": post.ID, "like_type": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "removed", result["transition"])
	assert.Equal(t, float64(0), result["votes"])
	assert.Zero(t, testutil.CountReactions(t, env.db, userID, models.PostTarget(post.ID)))

	status, result = like(map[string]any{"reply_id": reply.ID, "like_type": false})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(-1), result["votes"])
	assert.Equal(t, map[string]any{"type": "reply", "id": float64(reply.ID)}, result["target"])

	status, result = like(map[string]any{"post_id": post.ID, "reply_id": reply.ID, "like_type": true})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Exactly one of post_id or reply_id is required", result["error"])

	status, result = like(map[string]any{"post_id": post.ID})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "like_type is required", result["error"])

	status, result = like(map[string]any{"post_id": 9999, "like_type": true})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeInvalidTarget, result["code"])
}

func TestLegacyAuthErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	foreign, err := auth.NewIssuer("some-other-secret-entirely-0123456789", time.Hour).Issue(1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "garbage", http.StatusForbidden},
		{"foreign token", foreign, http.StatusForbidden},
	}

	for _, path := range []string{"/posts", "/replies", "/likes"} {
		for _, tt := range tests {
			t.Run(path+" "+tt.name, func(t *testing.T) {
				resp := env.do(t, http.MethodPost, path, map[string]any{}, tt.token)
				assert.Equal(t, tt.status, resp.StatusCode)
			})
		}
	}
}

func TestLegacySignupAndLoginErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	legacySignupAndLogin(t, env, "taken")

	resp := env.do(t, http.MethodPost, "/signup", map[string]string{
		"username": "taken",
		"email":    "other@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Username already taken", errorMessage(t, resp))

	resp = env.do(t, http.MethodPost, "/signup", map[string]string{
		"username": "shortpw",
		"email":    "shortpw@example.com",
		"password": "abc",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/login", map[string]string{
		"email":    "taken@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", errorMessage(t, resp))

	resp = env.do(t, http.MethodPost, "/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", errorMessage(t, resp))
}

func TestLegacyCreatePostValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := legacySignupAndLogin(t, env, "writer")

	resp := env.do(t, http.MethodPost, "/posts", map[string]any{
		"language_id": 42,
		"title":       "Title",
		"content":     "Body",
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid language", errorMessage(t, resp))

	resp = env.do(t, http.MethodGet, "/posts/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid language ID", errorMessage(t, resp))

	resp = env.do(t, http.MethodPost, "/replies", map[string]any{
		"post_id": 999,
		"content": "orphan",
	}, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Post with ID 999 not found", errorMessage(t, resp))
}
