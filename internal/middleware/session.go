package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	// SessionCookieName is set by the sign-in service; this API only reads it.
	SessionCookieName  = "hatchery.sid"
	SessionRedisPrefix = "session:"

	sessionLookupTimeout = 2 * time.Second
)

// SessionUser is the identity stored in a session under "user".
type SessionUser struct {
	UserID   string `json:"user_id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Session loads the session named by the cookie from Redis into Locals. Sessions
// are issued elsewhere; nothing is written back.
func Session(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := parseSessionCookie(utils.CopyString(c.Cookies(SessionCookieName)))
		c.Locals("session_id", sessionID)
		c.Locals("user", nil)
		if sessionID == "" || rdb == nil {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), sessionLookupTimeout)
		b, err := rdb.Get(ctx, SessionRedisPrefix+sessionID).Bytes()
		cancel()
		if err != nil {
			if err != redis.Nil {
				log.Warn().Err(err).Str("trace_id", GetTraceID(c)).Msg("session: lookup failed")
			}
			return c.Next()
		}

		var data struct {
			User *SessionUser `json:"user"`
		}
		if err := json.Unmarshal(b, &data); err == nil && data.User != nil && data.User.UserID != "" {
			c.Locals("user", data.User)
		}
		return c.Next()
	}
}

// parseSessionCookie accepts both a bare id and the signed "s:<id>.<sig>" form.
func parseSessionCookie(v string) string {
	if strings.HasPrefix(v, "s:") {
		v, _, _ = strings.Cut(v[2:], ".")
	}
	return strings.TrimSpace(v)
}

// GetSessionID returns the current session ID from context.
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("session_id").(string)
	return sid
}
