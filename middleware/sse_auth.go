// middleware/sse_auth.go
package middleware

import (
	"log"
	"strings"

	"job-tracker-system/services"

	"github.com/gofiber/fiber/v2"
)

// SSEAuthMiddleware validates the `token` query param via the Auth service.
// EventSource cannot set request headers, so the SSE stream authenticates by
// query instead of the gateway's X-User-ID header.
//
// Usage:
//
//	app.Get("/s/user/achievements/stream", middleware.SSEAuthMiddleware(authClient), evalService.StreamUnlocksSSE)
func SSEAuthMiddleware(authClient *services.AuthServiceClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := strings.TrimSpace(c.Query("token"))
		if accessToken == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing token in query",
			})
		}

		resp, err := authClient.ValidateToken(accessToken)
		if err != nil {
			log.Printf("[SSEAuth] ❌ Validation failed for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		c.Locals("user_id", resp.UserID)
		c.Locals("user_roles", resp.Roles)
		return c.Next()
	}
}
