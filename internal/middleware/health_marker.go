package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis keys read back by the health dashboard and cleared by /reset.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"
)

// HealthKeys lists every key the health stats use.
var HealthKeys = []string{KeyReqTotal, KeyReqErrors, KeyResTime, KeyResCount, KeyStartTime, KeyLastReq, KeyErrorLog}

// LastRequest is stored under KeyLastReq.
type LastRequest struct {
	Time   time.Time `json:"time"`
	IP     string    `json:"ip"`
	Path   string    `json:"path"`
	Method string    `json:"method"`
}

// HealthMarker records request stats in Redis (skips /, /health*, /reset and favicon).
// Stats are best effort: a Redis failure never fails the request.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if rdb == nil || path == "/" || path == "/reset" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		last, _ := json.Marshal(LastRequest{Time: start.UTC(), IP: c.IP(), Path: c.OriginalURL(), Method: c.Method()})
		ms := time.Since(start).Milliseconds()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, perr := rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, KeyLastReq, last, 0)
			p.Incr(ctx, KeyReqTotal)
			p.Incr(ctx, KeyResCount)
			p.IncrByFloat(ctx, KeyResTime, float64(ms))
			if status >= 500 {
				p.Incr(ctx, KeyReqErrors)
			}
			return nil
		})
		if perr != nil {
			log.Debug().Err(perr).Msg("health: request stats not recorded")
		}
		return err
	}
}
