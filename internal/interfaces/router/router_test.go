package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gridsvc "hatchery-backend/internal/application/grid"
	"hatchery-backend/internal/config"
	"hatchery-backend/internal/domain/hatchcycle"
	"hatchery-backend/internal/infrastructure/database"
	"hatchery-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:               "test",
		HealthAdminKey:    "admin",
		GridIdleTTL:       30 * time.Minute,
		GridSweepSchedule: "*/5 * * * *",
	}
}

func setupServer(t *testing.T) (*Server, *miniredis.Miniredis) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	require.NoError(t, mr.Set("session:sess-1", `{"user":{"user_id":"u-1","email":"ops@hatchery.test","role":"operator"}}`))

	srv, err := Build(testConfig(), db, rdb)
	require.NoError(t, err)
	return srv, mr
}

func request(t *testing.T, app *fiber.App, method, path string, body interface{}, signedIn bool) *http.Response {
	t.Helper()
	sid := ""
	if signedIn {
		sid = "sess-1"
	}
	return requestAs(t, app, method, path, body, sid)
}

func requestAs(t *testing.T, app *fiber.App, method, path string, body interface{}, sid string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "s:" + sid + ".sig"})
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestBuild_HealthOnlyWithoutDatabase(t *testing.T) {
	srv, err := Build(testConfig(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, srv.Grids)

	resp := request(t, srv.App, "GET", "/health/json", nil, false)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = request(t, srv.App, "GET", "/api/v1/hatch-cycles", nil, false)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAPI_RequiresSession(t *testing.T) {
	srv, _ := setupServer(t)
	for _, path := range []string{"/api/v1/hatch-cycles", "/api/v1/grid", "/api/v1/flocks"} {
		resp := request(t, srv.App, "GET", path, nil, false)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestAPI_EndToEnd(t *testing.T) {
	srv, mr := setupServer(t)
	app := srv.App

	resp := request(t, app, "POST", "/api/v1/flocks", map[string]interface{}{"flock_number": "FL-9", "supplier_name": "Hillside"}, true)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = request(t, app, "POST", "/api/v1/hatch-cycles", map[string]interface{}{
		"hatch_no": "H-001", "eggs_set": 14000, "set_date": "2024-03-01", "supplier_flock_number": "FL-9",
	}, true)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	rec := created["data"].(map[string]interface{})
	assert.Equal(t, "Hillside", rec["supplier_name"])
	assert.Equal(t, "ops@hatchery.test", rec["created_by"])

	resp = request(t, app, "POST", "/api/v1/grid/load", nil, true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, srv.Grids.Len())

	resp = request(t, app, "POST", "/api/v1/grid/select", map[string]interface{}{"record_id": rec["id"], "field": "cases_recd"}, true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = request(t, app, "POST", "/api/v1/grid/edit", map[string]interface{}{"draft": "39"}, true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = request(t, app, "POST", "/api/v1/grid/blur", nil, true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = request(t, app, "GET", "/api/v1/hatch-cycles/"+rec["id"].(string), nil, true)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, float64(14040), got["data"].(map[string]interface{})["eggs_recd"])
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))

	total, err := mr.Get(middleware.KeyReqTotal)
	require.NoError(t, err)
	assert.Equal(t, "7", total)
}

func TestGrid_EachSessionGetsItsOwnWorkspace(t *testing.T) {
	srv, mr := setupServer(t)
	app := srv.App
	require.NoError(t, mr.Set("session:sess-AAAA", `{"user":{"user_id":"u-a","email":"a@hatchery.test"}}`))
	require.NoError(t, mr.Set("session:sess-BBBB", `{"user":{"user_id":"u-b","email":"b@hatchery.test"}}`))

	resp := requestAs(t, app, "POST", "/api/v1/hatch-cycles", map[string]interface{}{
		"hatch_no": "H-001", "eggs_set": 14000, "set_date": "2024-03-01",
	}, "sess-AAAA")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	id := created["data"].(map[string]interface{})["id"]

	resp = requestAs(t, app, "POST", "/api/v1/grid/load", nil, "sess-AAAA")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = requestAs(t, app, "POST", "/api/v1/grid/select", map[string]interface{}{"record_id": id, "field": "eggs_set"}, "sess-AAAA")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = requestAs(t, app, "POST", "/api/v1/grid/load", nil, "sess-BBBB")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, srv.Grids.Len())

	resp = requestAs(t, app, "POST", "/api/v1/grid/confirm", nil, "sess-BBBB")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, "B is not editing A's cell")

	a, err := srv.Grids.Get("sess-AAAA")
	require.NoError(t, err)
	assert.Equal(t, hatchcycle.EggsSet, a.Editor.Snapshot().Cell.Field)
	b, err := srv.Grids.Get("sess-BBBB")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, gridsvc.Idle, b.Editor.Snapshot().State)
}
