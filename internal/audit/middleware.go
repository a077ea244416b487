package audit

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"admin-backend/internal/api"
	"admin-backend/internal/auth"
)

// Middleware records every mutating request after it completes. The entry
// carries the acting user when the route ran behind the session guard.
func (l *Logger) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return err
		}

		// The central error handler has not run yet, so the response
		// status for failed requests comes from the error itself.
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var appErr *api.AppError
			var fiberErr *fiber.Error
			if errors.As(err, &appErr) {
				status = appErr.Status
			} else if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}

		var userID int64
		if user := auth.CurrentUser(c); user != nil {
			userID = user.ID
		}
		l.Record(Entry{
			UserID: userID,
			Action: c.Method(),
			Path:   c.Path(),
			Status: status,
		})
		return err
	}
}
