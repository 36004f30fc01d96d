package middleware

import (
	"github.com/gofiber/fiber/v3"
)

// AdminGate hides the admin panel unless it is enabled. Access control is
// expected in front of the site; the gate only keeps the routes dark.
func AdminGate(enabled bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		if !enabled {
			return fiber.ErrNotFound
		}
		c.Set("X-Robots-Tag", "noindex, nofollow")
		c.Set("Cache-Control", "no-store")
		return c.Next()
	}
}
