package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorHandlerMiddleware converts errors bubbled up from controllers and
// services into the standard JSON envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := err.Error()

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			code = fiber.StatusNotFound
			message = "Record not found"
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
