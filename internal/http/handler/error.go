package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"portfolioapi/internal/auth"
	"portfolioapi/internal/http/middleware"
	"portfolioapi/internal/integration"
	"portfolioapi/internal/service"
	"portfolioapi/internal/storage"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string // empty means err.Error()
}

// mappings is checked in order with errors.Is.
var mappings = []errorMapping{
	{service.ErrValidation, fiber.StatusBadRequest, "VALIDATION_ERROR", ""},
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID", "id is required"},
	{service.ErrReaderNil, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password"},
	{service.ErrAccountDisabled, fiber.StatusForbidden, "ACCOUNT_DISABLED", "account is disabled"},
	{service.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
	{auth.ErrInvalidToken, fiber.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token"},
	{auth.ErrWrongTokenType, fiber.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token"},
	{service.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "operation not permitted"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "resource not found"},
	{service.ErrConflict, fiber.StatusConflict, "CONFLICT", "resource already exists or is in use"},
	{integration.ErrUnknownProvider, fiber.StatusNotFound, "UNKNOWN_PROVIDER", ""},
	{integration.ErrInvalidSettings, fiber.StatusBadRequest, "INVALID_SETTINGS", ""},
	{integration.ErrUnsupported, fiber.StatusBadRequest, "UNSUPPORTED", ""},
	{integration.ErrNotConnected, fiber.StatusConflict, "NOT_CONNECTED", ""},
	{integration.ErrDelivery, fiber.StatusBadGateway, "DELIVERY_FAILED", "webhook delivery failed"},
	{storage.ErrUnavailable, fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "file storage is not configured"},
}

// fail translates a service error into the error envelope. Unknown errors go
// to the global ErrorHandler, which logs them and answers 500.
func fail(c *fiber.Ctx, err error) error {
	for _, m := range mappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		switch {
		case m.target == service.ErrValidation:
			msg = service.ValidationMessage(err)
		case msg == "":
			msg = err.Error()
		}
		return writeError(c, m.status, m.code, msg)
	}
	return err
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	log = log.Named("http")
	return func(c *fiber.Ctx, err error) error {
		var ae *apiError
		if errors.As(err, &ae) {
			return writeError(c, ae.status, ae.code, ae.message)
		}
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			log.Error("unhandled_error",
				zap.String("request_id", middleware.RequestIDFrom(c)),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		switch fe.Code {
		case fiber.StatusBadRequest:
			return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, fe.Code, "UNAUTHORIZED", fe.Message)
		case fiber.StatusForbidden:
			return writeError(c, fe.Code, "FORBIDDEN", fe.Message)
		case fiber.StatusNotFound:
			return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			if fe.Code >= fiber.StatusInternalServerError {
				log.Error("server_error", zap.String("request_id", middleware.RequestIDFrom(c)), zap.Error(err))
				return writeError(c, fe.Code, "INTERNAL_ERROR", "internal server error")
			}
			return writeError(c, fe.Code, "ERROR", fe.Message)
		}
	}
}
