package api

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"mailview/log"
	"mailview/utils"
)

// ErrorHandler turns errors returned by handlers into the JSON error
// envelope. Application errors carry their own status code; everything
// else is a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An unexpected error occurred"

	var appErr *utils.AppError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code >= fiber.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   http.StatusText(code),
		"message": message,
	})
}
