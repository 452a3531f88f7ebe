package middleware

import (
	"log"
	"strings"

	"newsportal/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware that guards protected routes with a JWT
// bearer token. Every failure mode (missing header, malformed header, bad
// signature, expired token) produces the same 401 response; the underlying
// cause is logged server-side only.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c)
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return unauthorized(c)
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return unauthorized(c)
		}

		userID, _ := claims["user_id"].(string)
		username, _ := claims["username"].(string)
		if userID == "" {
			log.Printf("JWT accepted but user_id claim missing or not a string")
			return unauthorized(c)
		}

		// Store identity in the Fiber context for downstream handlers
		c.Locals("user_id", userID)
		c.Locals("username", username)

		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Unauthorized",
	})
}
