package utils

import (
	"errors"
	"net/http"

	"ms-hotel/internal/models"
)

// ErrorKind names the taxonomy entry an error belongs to, for clients that
// branch on error classes rather than messages.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, models.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, models.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, models.ErrRoomUnavailable):
		return "room_unavailable"
	case errors.Is(err, models.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, models.ErrAccessDenied):
		return "access_denied"
	default:
		return "internal"
	}
}

// HTTPStatus maps a service error onto the status code the API layer
// should respond with. Unknown errors are treated as internal.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrRoomUnavailable),
		errors.Is(err, models.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, models.ErrAccessDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
