package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"polyglot/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-key-12345678901234567890123456789012"

func TestLegacyAuth(t *testing.T) {
	app := fiber.New()
	app.Post("/posts", LegacyAuth(auth.NewVerifier(secret)), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals(LocalUserID)})
	})

	valid, err := auth.NewIssuer(secret, time.Hour).Issue(123)
	require.NoError(t, err)
	foreign, err := auth.NewIssuer("some-other-secret", time.Hour).Issue(123)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"malformed token", "Bearer malformed.token.here", http.StatusForbidden},
		{"foreign signature", "Bearer " + foreign, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status == http.StatusOK {
				var body map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, float64(123), body["userID"])
			}
		})
	}
}

func TestExternalIdentity(t *testing.T) {
	app := fiber.New()
	app.Post("/api/posts", ExternalIdentity(auth.NewExternalVerifier(secret, "")), func(c *fiber.Ctx) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.JSON(fiber.Map{"ref": id.Ref})
	})

	token, err := auth.SignExternal(secret, "", auth.Identity{Ref: "user_2abc", Username: "maria"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "user_2abc", body["ref"])

	for _, header := range []string{"", "Bearer nope"} {
		req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, header)
	}
}
