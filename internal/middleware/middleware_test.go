package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(v string) *http.Cookie {
	return &http.Cookie{Name: SessionCookieName, Value: v}
}

func decodeBody(t *testing.T, r io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}

func TestTracing_GeneratesOrReusesTraceID(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetTraceID(c)) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get("X-Trace-Id")
	_, err = uuid.Parse(generated)
	assert.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, generated, string(body))

	incoming := uuid.NewString()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", incoming)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, incoming, resp.Header.Get("X-Trace-Id"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "not a uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "not a uuid", resp.Header.Get("X-Trace-Id"))
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedSuffix: ".hatchery.test", DevPassword: "let-me-in"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://ops.hatchery.test")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://ops.hatchery.test", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "https://ops.hatchery.test")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PATCH")

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("dev-password", "let-me-in")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORS_Localhost(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowLocalhost: true}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHealthMarker_CountsRequests(t *testing.T) {
	rdb, mr := setupRedis(t)
	app := fiber.New()
	app.Use(HealthMarker(rdb))
	app.Get("/api/v1/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/api/v1/boom", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/health/json", func(c *fiber.Ctx) error { return c.SendString("{}") })

	for _, path := range []string{"/api/v1/ok", "/api/v1/ok", "/api/v1/boom", "/health/json"} {
		_, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
	}

	total, err := mr.Get(KeyReqTotal)
	require.NoError(t, err)
	assert.Equal(t, "3", total)
	failed, err := mr.Get(KeyReqErrors)
	require.NoError(t, err)
	assert.Equal(t, "1", failed)

	raw, err := rdb.Get(context.Background(), KeyLastReq).Bytes()
	require.NoError(t, err)
	var last LastRequest
	require.NoError(t, json.Unmarshal(raw, &last))
	assert.Equal(t, "/api/v1/boom", last.Path)
	assert.Equal(t, "GET", last.Method)
}

func TestErrorHandler_LogsServerErrors(t *testing.T) {
	rdb, _ := setupRedis(t)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(rdb)})
	app.Use(Tracing())
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("database exploded") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	out := decodeBody(t, resp.Body)
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "Internal Server Error", out["error"].(map[string]interface{})["message"])

	resp, err = app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	entries, err := rdb.LRange(context.Background(), KeyErrorLog, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var entry ErrorLogEntry
	require.NoError(t, json.Unmarshal([]byte(entries[0]), &entry))
	assert.Equal(t, "database exploded", entry.Message)
	assert.Equal(t, "/boom", entry.Path)
	assert.NotEmpty(t, entry.TraceID)
}

func TestErrorHandler_CapsLog(t *testing.T) {
	rdb, _ := setupRedis(t)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(rdb)})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	for i := 0; i < ErrorLogSize+5; i++ {
		_, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
		require.NoError(t, err)
	}
	n, err := rdb.LLen(context.Background(), KeyErrorLog).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(ErrorLogSize), n)
}
