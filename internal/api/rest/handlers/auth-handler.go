package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/MediExpress/auth_service/internal/api/rest/middleware"
	"github.com/MediExpress/auth_service/internal/dto"
	"github.com/MediExpress/auth_service/internal/helper"
	"github.com/MediExpress/auth_service/internal/helper/utils"
	"github.com/MediExpress/auth_service/internal/repository"
	"github.com/MediExpress/auth_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

const apiVersion = "1.0.0"

type AuthHandler struct {
	svc    services.AuthService
	auth   helper.Auth
	tokens repository.TokenRepository
}

func NewAuthHandler(svc services.AuthService, auth helper.Auth, tokens repository.TokenRepository) *AuthHandler {
	return &AuthHandler{svc: svc, auth: auth, tokens: tokens}
}

func (h *AuthHandler) SetupRoutes(app *fiber.App) {
	auth := app.Group("/auth")

	// Public
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/google", h.GoogleLogin)
	auth.Post("/forgot-password", h.ForgotPassword)
	auth.Post("/reset-password", h.ResetPassword)

	app.Get("/test", h.Liveness)

	app.Use(middleware.AuthMiddleware(h.auth, h.tokens))

	// Protected
	auth.Post("/logout", h.Logout)
	auth.Post("/refresh", h.Refresh)
	auth.Get("/profile", h.Profile)
	app.Get("/user", h.CurrentUser)
}

func (h *AuthHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest

	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if errs := helper.ValidateStruct(requestBody); errs != nil {
		return utils.ResponseValidation(ctx, "Validation error", errs)
	}

	user, token, err := h.svc.Register(requestBody)
	if err != nil {
		var fieldErrs helper.FieldErrors
		if errors.As(err, &fieldErrs) {
			return utils.ResponseValidation(ctx, "Validation error", fieldErrs)
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "Registration failed")
	}

	return utils.ResponseSuccess(ctx, fiber.StatusCreated, fiber.Map{
		"message": "Registration successful",
		"user":    dto.NewUserSummary(user),
		"token":   token,
	})
}

func (h *AuthHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.UserLogin

	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if errs := helper.ValidateStruct(requestBody); errs != nil {
		return utils.ResponseValidation(ctx, "Validation error", errs)
	}

	user, token, err := h.svc.Login(requestBody)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// identical body for unknown email and wrong password
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, "Incorrect email or password")
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "Login failed")
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Login successful",
		"user":    dto.NewUserSummary(user),
		"token":   token,
	})
}

func (h *AuthHandler) GoogleLogin(ctx *fiber.Ctx) error {
	var requestBody dto.GoogleLoginRequest

	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if errs := helper.ValidateStruct(requestBody); errs != nil {
		return utils.ResponseValidation(ctx, "Google validation error", errs)
	}

	user, token, err := h.svc.GoogleLogin(requestBody)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "Google login failed")
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Google login successful",
		"user":    dto.NewUserSummary(user),
		"token":   token,
	})
}

func (h *AuthHandler) ForgotPassword(ctx *fiber.Ctx) error {
	var requestBody dto.ForgotPasswordRequest

	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid email")
	}

	if errs := helper.ValidateStruct(requestBody); errs != nil {
		return utils.ResponseValidation(ctx, "Validation error", errs)
	}

	if err := h.svc.ForgotPassword(requestBody.Email); err != nil {
		if errors.Is(err, services.ErrEmailNotFound) {
			return utils.ResponseValidation(ctx, "Email not found", helper.FieldErrors{
				"email": {"The selected email is invalid."},
			})
		}
		if errors.Is(err, services.ErrResetDispatch) {
			return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
				"success": false,
				"message": "Failed to send recovery email",
			})
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "Failed to send recovery email")
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Recovery email sent",
	})
}

func (h *AuthHandler) ResetPassword(ctx *fiber.Ctx) error {
	var requestBody dto.ResetPasswordRequest

	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid input")
	}

	if errs := helper.ValidateStruct(requestBody); errs != nil {
		return utils.ResponseValidation(ctx, "Validation error", errs)
	}

	if err := h.svc.ResetPassword(requestBody); err != nil {
		if errors.Is(err, services.ErrInvalidResetToken) {
			return utils.ResponseValidation(ctx, "Validation error", helper.FieldErrors{
				"token": {"The token is invalid or has expired."},
			})
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "Password reset failed")
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Password reset successful",
	})
}

func (h *AuthHandler) Logout(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	// revocation failures are logged, not surfaced; the contract is a
	// plain 200 once the middleware accepted the token
	if err := h.svc.Logout(claims.TokenID); err != nil {
		log.Printf("logout error: %v", err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Logout successful",
	})
}

func (h *AuthHandler) Refresh(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	token, err := h.svc.RefreshToken(claims.UserID, claims.Email, claims.TokenID)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "could not refresh token")
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Token refreshed",
		"token":   token,
	})
}

func (h *AuthHandler) Profile(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := h.svc.GetProfile(claims.UserID)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusNotFound, "user not found")
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"user": dto.NewUserProfile(user),
	})
}

// CurrentUser returns the raw user record, without the response envelope.
func (h *AuthHandler) CurrentUser(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := h.svc.GetProfile(claims.UserID)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusNotFound, "user not found")
	}

	return ctx.Status(fiber.StatusOK).JSON(user)
}

func (h *AuthHandler) Liveness(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "MediExpress API is running!",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   apiVersion,
	})
}
