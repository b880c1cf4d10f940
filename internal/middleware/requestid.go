package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const ReqIDKey = "reqID"

// RequestID tags every request with an X-Request-ID, minting one when the
// caller didn't send theirs, and exposes it via Locals for handler logs.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set("X-Request-ID", rid)
		c.Locals(ReqIDKey, rid)
		return c.Next()
	}
}
