package utils

import "github.com/gofiber/fiber/v2"

func ResponseError(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

func ResponseValidation(ctx *fiber.Ctx, msg string, errs map[string][]string) error {
	return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"success": false,
		"message": msg,
		"errors":  errs,
	})
}

func ResponseSuccess(ctx *fiber.Ctx, status int, body fiber.Map) error {
	body["success"] = true
	return ctx.Status(status).JSON(body)
}
