package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/helmet/v2"
)

// SecureHeaders -> default security headers; the service only serves JSON,
// so the helmet defaults are enough.
func SecureHeaders() fiber.Handler {
	return helmet.New()
}
