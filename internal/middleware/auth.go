package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/TuongNguyen09/web-chat/internal/apperr"
	"github.com/TuongNguyen09/web-chat/internal/httpx"
	"github.com/TuongNguyen09/web-chat/internal/service"
)

// AuthRequired verifies the bearer access token through the token service
// (signature, expiry, kind and the revocation blacklist) and binds the
// verified identity to the request. The WebSocket route reuses this, so a
// connection carries a bound identity before any subscription is possible.
func AuthRequired(tokens *service.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		var tokenString string
		if authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
			}
			tokenString = parts[1]
		} else {
			tokenString = c.Query("access_token")
		}

		if tokenString == "" {
			return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
		}

		claims, err := tokens.Verify(tokenString, service.AccessToken)
		if err != nil {
			if apperr.IsStoreUnavailable(err) {
				return httpx.FromError(c, err)
			}
			return httpx.Unauthorized(c, "unauthenticated", "Unauthenticated")
		}

		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Subject)
		c.Locals("accessJTI", claims.ID)

		return c.Next()
	}
}
