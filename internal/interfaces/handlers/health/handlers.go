package health

import (
	"encoding/json"
	"strconv"
	"time"

	healthsvc "hatchery-backend/internal/application/health"
	"hatchery-backend/internal/middleware"
	"hatchery-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const serviceName = "hatchery-api"

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Rdb            *redis.Client
	DB             healthsvc.DBPinger
	Grid           healthsvc.WorkspaceCounter
	HealthAdminKey string
}

func (h *Handlers) collect(c *fiber.Ctx) healthsvc.CollectResult {
	return healthsvc.CollectHealth(c.UserContext(), healthsvc.Sources{Redis: h.Rdb, DB: h.DB, Grid: h.Grid})
}

// Reset clears health stats in Redis. Requires query key=HEALTH_ADMIN_KEY.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" || key != h.HealthAdminKey {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	if h.Rdb == nil {
		return response.Error(c, "Redis is not configured", fiber.StatusServiceUnavailable, nil)
	}
	ctx := c.UserContext()
	_, err := h.Rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, middleware.HealthKeys...)
		p.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0)
		return nil
	})
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}

// JSON returns health data as JSON: service, status, runtime, traffic, grid, dependencies.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := h.collect(c)
	return c.JSON(fiber.Map{
		"service":      serviceName,
		"status":       result.Status,
		"runtime":      result.Runtime,
		"traffic":      result.Traffic,
		"grid":         result.Grid,
		"dependencies": result.Dependencies,
	})
}

// Errors returns the error log, newest first.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	entries := []middleware.ErrorLogEntry{}
	if h.Rdb == nil {
		return c.JSON(entries)
	}
	raw, err := h.Rdb.LRange(c.UserContext(), middleware.KeyErrorLog, 0, middleware.ErrorLogSize-1).Result()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(entries)
	}
	for _, s := range raw {
		var e middleware.ErrorLogEntry
		if json.Unmarshal([]byte(s), &e) == nil {
			entries = append(entries, e)
		}
	}
	return c.JSON(entries)
}

// Dashboard returns the HTML status page.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	html, err := healthsvc.RenderDashboardHTML(h.collect(c))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}

// Register mounts the health routes on the app root.
func (h *Handlers) Register(r fiber.Router) {
	r.Get("/", h.Dashboard)
	r.Get("/reset", h.Reset)
	r.Get("/health/json", h.JSON)
	r.Get("/health/errors", h.Errors)
}
