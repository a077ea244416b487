package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the central Fiber error handler. Every *AppError is
// translated to its status and JSON envelope; anything else becomes a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
	}

	log.Printf("ERROR: %v", err)
	return c.Status(code).JSON(ErrorResponse{
		Error: &AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
	})
}
