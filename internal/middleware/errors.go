// Package middleware provides HTTP middleware components for the application.
package middleware

import (
	"errors"

	"bulkpay/internal/utils/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error that escapes a handler, including
// recovered panics, as a JSON body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
