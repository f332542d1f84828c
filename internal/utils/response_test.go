package utils_test

import (
	"fmt"
	"net/http"
	"testing"

	"ms-hotel/internal/models"
	"ms-hotel/internal/utils"

	"github.com/stretchr/testify/assert"
)

func TestFailureResponseCarriesKind(t *testing.T) {
	err := fmt.Errorf("booking 9: %w", models.ErrInvalidTransition)

	resp := utils.FailureResponse("could not check in", err)
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid_transition", resp.Kind)
	assert.Contains(t, resp.Error, "booking 9")
}

func TestErrorKindAndStatusAgree(t *testing.T) {
	cases := []struct {
		err    error
		kind   string
		status int
	}{
		{models.ErrNotFound, "not_found", http.StatusNotFound},
		{models.ErrInvalidQuantity, "invalid_quantity", http.StatusBadRequest},
		{models.ErrInvalidAmount, "invalid_amount", http.StatusBadRequest},
		{models.ErrInvalidTransition, "invalid_transition", http.StatusConflict},
		{models.ErrRoomUnavailable, "room_unavailable", http.StatusConflict},
		{models.ErrInsufficientStock, "insufficient_stock", http.StatusConflict},
		{models.ErrAccessDenied, "access_denied", http.StatusForbidden},
		{fmt.Errorf("boom"), "internal", http.StatusInternalServerError},
	}

	for _, c := range cases {
		assert.Equal(t, c.kind, utils.ErrorKind(c.err))
		assert.Equal(t, c.status, utils.HTTPStatus(c.err))
	}
}
