package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docvault/internal/http/middleware"
	"docvault/internal/service"
	"docvault/internal/validation"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details []validation.Violation `json:"details,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details []validation.Violation) error {
	res := errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError translates service and validation errors. Anything unrecognized is logged
// and reported as a generic 500.
func writeServiceError(c *fiber.Ctx, logger *zap.SugaredLogger, err error) error {
	if se, ok := validation.AsStructError(err); ok {
		return writeErrorDetails(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "validation failed", se.Violations)
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, service.ErrFileRequired):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "No file uploaded")
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file too large")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Document not found")
	case errors.Is(err, service.ErrFileNotFound):
		return writeError(c, fiber.StatusNotFound, "FILE_NOT_FOUND", "File not found")
	case errors.Is(err, service.ErrUserNotFound):
		return writeError(c, fiber.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "Access denied")
	case errors.Is(err, service.ErrVersionConflict):
		return writeError(c, fiber.StatusConflict, "VERSION_CONFLICT", "document was modified concurrently, retry")
	case errors.Is(err, service.ErrUserExists):
		return writeError(c, fiber.StatusBadRequest, "USER_EXISTS", "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeError(c, fiber.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid credentials")
	}

	logger.Errorw("request failed", "request_id", middleware.GetRequestID(c), "path", c.Path(), "error", err)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler(logger *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", e.Message)
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		default:
			logger.Errorw("unhandled error", "request_id", middleware.GetRequestID(c), "path", c.Path(), "error", err)
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
