package response

import (
	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Accepted(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// ServiceUnavailable reports a failed call to a downstream system,
// with whatever was produced before the failure.
func ServiceUnavailable(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": message,
		"data":  data,
	})
}

func ValidationError(c *fiber.Ctx, message string, fields interface{}) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  message,
		"fields": fields,
	})
}
