package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingAndContextMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(TracingMiddleware())
	app.Use(ContextMiddleware())
	app.Get("/ping", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		rid, _ := ctx.Value(RequestIDKey).(string)
		tid, _ := ctx.Value(TraceIDKey).(string)
		return c.JSON(fiber.Map{"rid": rid, "tid": tid})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Header.Get("X-Trace-ID"), 32)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestInitMetricsIsShared(t *testing.T) {
	a := InitMetrics("polyglot-api")
	b := InitMetrics("polyglot-api")
	assert.Same(t, a, b)

	app := fiber.New()
	app.Use(MetricsMiddleware(a))
	a.RegisterAt(app, "/metrics")
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
