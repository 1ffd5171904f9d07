package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/kcluster/internal/logging"
	"github.com/soltixdb/kcluster/internal/models"
)

// statusCodes maps fiber statuses to the error codes returned in ErrorResponse
var statusCodes = map[int]string{
	fiber.StatusBadRequest:            "BAD_REQUEST",
	fiber.StatusNotFound:              "NOT_FOUND",
	fiber.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	fiber.StatusRequestEntityTooLarge: "BODY_TOO_LARGE",
	fiber.StatusRequestTimeout:        "TIMEOUT",
	fiber.StatusUnsupportedMediaType:  "UNSUPPORTED_MEDIA_TYPE",
}

// ErrorHandler renders errors that escape the handlers, including fiber's own
// body-limit and routing errors, as an ErrorResponse.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		}

		code, ok := statusCodes[status]
		if !ok {
			code = "INTERNAL_ERROR"
			if status < fiber.StatusInternalServerError {
				code = "ERROR"
			}
		}

		log := logger.WithContext(c.UserContext())
		if status >= fiber.StatusInternalServerError {
			log.Error("Request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
		} else {
			log.Warn("Request rejected", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
		}

		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    code,
				Message: message,
				Path:    c.Path(),
			},
		})
	}
}
