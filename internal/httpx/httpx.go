package httpx

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/TuongNguyen09/web-chat/internal/apperr"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func requestID(c *fiber.Ctx) string {
	if v := c.Locals("requestid"); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func Error(c *fiber.Ctx, status int, code string, message string) error {
	if message == "" {
		message = "Request failed"
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestID(c),
	})
}

func BadRequest(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusBadRequest, code, message)
}

func Unauthorized(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusUnauthorized, code, message)
}

func Forbidden(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusForbidden, code, message)
}

func NotFound(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusNotFound, code, message)
}

func Internal(c *fiber.Ctx, code string) error {
	return Error(c, fiber.StatusInternalServerError, code, "Internal server error")
}

// FromError maps a service error onto the HTTP taxonomy. Credential failures
// stay opaque; store unavailability gets 503 so clients know it is retryable.
func FromError(c *fiber.Ctx, err error) error {
	switch {
	case apperr.IsUnauthenticated(err):
		return Unauthorized(c, "unauthenticated", "Unauthenticated")
	case apperr.IsForbidden(err):
		return Forbidden(c, "forbidden", "Not a member of this chat")
	case apperr.IsNotFound(err):
		return NotFound(c, "not_found", "Resource not found")
	case apperr.IsInvalidState(err):
		return Error(c, fiber.StatusConflict, "invalid_state", "Operation not valid for this resource")
	case apperr.IsStoreUnavailable(err):
		return Error(c, fiber.StatusServiceUnavailable, "store_unavailable", "Temporarily unavailable, retry")
	default:
		return Internal(c, "internal_error")
	}
}

func LocalUint(c *fiber.Ctx, key string) (uint, error) {
	v := c.Locals(key)
	if v == nil {
		return 0, fmt.Errorf("missing local %s", key)
	}
	u, ok := v.(uint)
	if !ok {
		return 0, fmt.Errorf("invalid local %s", key)
	}
	return u, nil
}
