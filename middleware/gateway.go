// middleware/gateway.go
package middleware

import (
	"crypto/subtle"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GatewayAuthMiddleware rejects any request that does not carry the shared
// service token. The league service is never exposed directly; every call
// arrives through the Gateway, which injects the token and the user headers.
func GatewayAuthMiddleware() fiber.Handler {
	token := os.Getenv("LEAGUE_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("❌ LEAGUE_SERVICE_TOKEN is not set, refusing to start without a gateway trust anchor")
	}

	return func(c *fiber.Ctx) error {
		presented := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		if presented == "" {
			log.Printf("🚫 [GATEWAY_AUTH] no service token on %s %s", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			log.Printf("❌ [GATEWAY_AUTH] bad service token on %s %s", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}

		return c.Next()
	}
}
