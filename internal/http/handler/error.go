package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"doccompare/internal/http/middleware"
	"doccompare/internal/logger"
)

// errorPayload is the flat error body used by every endpoint.
type errorPayload struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes the standard JSON error body. message is shown to the user as is.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     message,
		Code:      code,
		RequestID: middleware.RequestIDFromCtx(c),
	})
}

// ErrorHandler returns a Fiber global error handler for errors returned by
// routing, middleware and handlers. Unexpected errors are logged and hidden.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", fe.Message)
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "Method Not Allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		case fiber.StatusTooManyRequests:
			return writeError(c, status, "RATE_LIMITED", fe.Message)
		default:
			log.Error("unhandled request error", map[string]any{
				"request_id": middleware.RequestIDFromCtx(c),
				"method":     c.Method(),
				"path":       c.Path(),
				"error":      err,
			})
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
