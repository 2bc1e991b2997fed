// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts user identity and roles set by Gateway.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		rolesStr := c.Get("X-User-Roles")
		otpNotRequiredStr := c.Get("X-Otp-Not-Required")

		// 🔐 Routes under this middleware always need a user identity
		if userID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID required but missing on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		otpNotRequired := strings.ToLower(otpNotRequiredStr) == "true"

		// Attach to ctx for handlers
		c.Locals("user_id", userID)
		c.Locals("user_roles", roles)
		c.Locals("otp_not_required", otpNotRequired)

		log.Printf(
			"👤 [USER_CTX] UserID=%s, Roles=%v, OTP exempt=%t | Path: %s",
			userID, roles, otpNotRequired, c.Path(),
		)

		return c.Next()
	}
}

// AdminOnlyMiddleware gates league administration routes on the roles the
// Gateway attached. Must run after UserContextMiddleware.
func AdminOnlyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, _ := c.Locals("user_roles").([]string)
		for _, r := range roles {
			if r == "admin" || r == "league_admin" {
				return c.Next()
			}
		}
		log.Printf("🚫 [ADMIN] user %v denied on %s (roles=%v)", c.Locals("user_id"), c.Path(), roles)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "admin role required",
		})
	}
}