package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"polyglot/internal/auth"
	"polyglot/internal/config"
	"polyglot/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testJWTSecret      = "legacy-secret-key-for-testing-only-0123"
	testExternalSecret = "external-secret-key-for-testing-only-01"
)

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	mr     *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		Port:                 "0",
		Env:                  "test",
		JWTSecret:            testJWTSecret,
		JWTTTLMinutes:        60,
		ExternalAuthSecret:   testExternalSecret,
		AllowedOrigins:       "http://localhost:3000",
		UploadPlaceholderURL: "https://dummyimage.com/300x300/cccccc/000000&text=Uploaded",
	}
}

// newTestEnv builds a server on SQLite and miniredis. configure, when non-nil,
// runs before the Fiber app is assembled.
func newTestEnv(t *testing.T, configure func(*Server)) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)
	if configure != nil {
		configure(s)
	}
	return &testEnv{server: s, app: s.App(), db: db, mr: mr}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	body := decodeBody[map[string]any](t, resp)
	msg, _ := body["error"].(string)
	return msg
}

// identityToken mints an external-provider token for ref.
func identityToken(t *testing.T, ref, username string) string {
	t.Helper()
	token, err := auth.SignExternal(testExternalSecret, "", auth.Identity{
		Ref:      ref,
		Username: username,
		Email:    username + "@example.com",
	}, time.Hour)
	require.NoError(t, err)
	return token
}

func TestNewServerWithDeps_RequiresDatabase(t *testing.T) {
	_, err := NewServerWithDeps(testConfig(), nil, nil)
	assert.Error(t, err)
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	live := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "up", live["status"])

	resp = env.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	ready := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "healthy", ready["status"])
	assert.Equal(t, map[string]any{"database": "healthy", "redis": "healthy"}, ready["services"])

	env.mr.Close()
	resp = env.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	ready = decodeBody[map[string]any](t, resp)
	assert.Equal(t, "unhealthy", ready["status"])
}

func TestReadinessWithoutRedis(t *testing.T) {
	db := testutil.NewTestDB(t)
	s, err := NewServerWithDeps(testConfig(), db, nil)
	require.NoError(t, err)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	ready := decodeBody[map[string]any](t, resp)
	assert.Equal(t, map[string]any{"database": "healthy", "redis": "unavailable"}, ready["services"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodGet, "/health/live", nil, "")

	resp := env.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/health/live", nil, "")
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	assert.Equal(t, "nosniff", resp.Header.Get(fiber.HeaderXContentTypeOptions))
	assert.Len(t, resp.Header.Get("X-Trace-ID"), 32)
}

func TestUnknownRouteReturnsErrorEnvelope(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, errorMessage(t, resp))
}

func TestSwaggerDocs(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/api/swagger/doc.json", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "Polyglot API", doc["info"].(map[string]any)["title"])

	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	for _, path := range []string{"/api/posts", "/api/posts/{id}/vote", "/likes", "/signup"} {
		assert.Contains(t, paths, path)
	}
}
