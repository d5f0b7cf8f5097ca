package middleware

import (
	"context"
	"encoding/json"
	"time"

	"hatchery-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrorLogSize caps the Redis error log.
const ErrorLogSize = 50

// ErrorLogEntry is one element of KeyErrorLog, newest first.
type ErrorLogEntry struct {
	Time    time.Time `json:"time"`
	Method  string    `json:"method"`
	Path    string    `json:"path"`
	Status  int       `json:"status"`
	Message string    `json:"message"`
	TraceID string    `json:"trace_id,omitempty"`
}

// ErrorHandler is the global error handler. It answers in the standard error
// format; server errors are logged and pushed onto the Redis error log.
func ErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			traceID := GetTraceID(c)
			log.Error().Err(err).Str("trace_id", traceID).Str("path", c.Path()).Msg("unhandled error")
			if rdb != nil {
				pushErrorLog(rdb, ErrorLogEntry{
					Time:    time.Now().UTC(),
					Method:  c.Method(),
					Path:    c.OriginalURL(),
					Status:  code,
					Message: err.Error(),
					TraceID: traceID,
				})
			}
		}
		return response.Error(c, message, code, nil)
	}
}

func pushErrorLog(rdb *redis.Client, entry ErrorLogEntry) {
	b, err := json.Marshal(entry)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, KeyErrorLog, b)
		p.LTrim(ctx, KeyErrorLog, 0, ErrorLogSize-1)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("error log: push failed")
	}
}
