package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return rdb, mr
}

func whoAmI(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"actor": Actor(c), "session": GetSessionID(c)})
}

func TestSession_LoadsUserFromRedis(t *testing.T) {
	rdb, mr := setupRedis(t)
	require.NoError(t, mr.Set("session:abc", `{"user":{"user_id":"u-1","email":"ops@hatchery.test","role":"operator"}}`))

	app := fiber.New()
	app.Use(Session(rdb))
	app.Get("/me", RequireAuth(), whoAmI)

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(sessionCookie("s:abc.signature"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decodeBody(t, resp.Body)
	assert.Equal(t, "ops@hatchery.test", out["actor"])
	assert.Equal(t, "abc", out["session"])
}

func TestSession_MissingOrUnknownIsUnauthorized(t *testing.T) {
	rdb, mr := setupRedis(t)
	require.NoError(t, mr.Set("session:broken", `{"user":{}}`))

	app := fiber.New()
	app.Use(Session(rdb))
	app.Get("/me", RequireAuth(), whoAmI)

	for _, cookie := range []string{"", "unknown", "broken"} {
		req := httptest.NewRequest("GET", "/me", nil)
		if cookie != "" {
			req.AddCookie(sessionCookie(cookie))
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, cookie)
		out := decodeBody(t, resp.Body)
		assert.Equal(t, "error", out["status"])
	}
}

func TestSession_RedisDownLeavesAnonymous(t *testing.T) {
	rdb, mr := setupRedis(t)
	mr.Close()

	app := fiber.New()
	app.Use(Session(rdb))
	app.Get("/me", whoAmI)

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(sessionCookie("abc"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "", decodeBody(t, resp.Body)["actor"])
}

func TestActor_FallsBackToUserID(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &SessionUser{UserID: "u-7"})
		return c.Next()
	})
	app.Get("/me", whoAmI)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, "u-7", decodeBody(t, resp.Body)["actor"])
}

func TestParseSessionCookie(t *testing.T) {
	assert.Equal(t, "abc", parseSessionCookie("s:abc.sig"))
	assert.Equal(t, "abc", parseSessionCookie("abc"))
	assert.Equal(t, "", parseSessionCookie(""))
}
