package models

import "errors"

// Core error kinds. Callers branch with errors.Is; storage layers wrap the
// underlying driver error so the cause stays inspectable.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidTransition = errors.New("invalid booking state transition")
	ErrRoomUnavailable   = errors.New("room unavailable for the requested dates")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrAccessDenied      = errors.New("access denied")
	ErrStorage           = errors.New("storage failure")
)
