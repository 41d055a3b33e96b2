package middleware

import (
	"learnify/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that allows only the given roles through.
// The role comes from the verified token claims set by JWTMiddleware.
func RequireRole(allowed ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("userRole").(models.Role)
		if !ok || !role.Valid() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  false,
				"message": "Unauthorized: role not found",
				"data":    nil,
			})
		}

		for _, a := range allowed {
			if role == a {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  false,
			"message": "You do not have permission to access this resource!",
			"data":    nil,
		})
	}
}
