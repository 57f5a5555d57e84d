package middleware

import (
	"strings"

	"github.com/MediExpress/auth_service/internal/helper"
	"github.com/MediExpress/auth_service/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware verifies the bearer token and checks that its jti still
// has a live row. A token revoked by logout or refresh fails here even if
// the signature is still valid.
func AuthMiddleware(auth helper.Auth, tokens repository.TokenRepository) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		// 1) try cookie first
		tokenStr := strings.TrimSpace(ctx.Cookies("access_token"))

		// 2) fallback to Authorization header
		if tokenStr == "" {
			tokenStr = strings.TrimSpace(ctx.Get("Authorization"))
		}

		user, err := auth.VerifyToken(tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		if _, err := tokens.FindTokenById(user.TokenID); err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "token revoked",
			})
		}

		ctx.Locals("userID", user.UserID)
		ctx.Locals("user", user)
		return ctx.Next()
	}
}
