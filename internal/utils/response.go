package utils

import "time"

// APIResponse is the envelope every hotel-core endpoint replies with. Kind
// carries the error taxonomy name so front-desk clients can branch on it
// without parsing the message.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Kind      string      `json:"kind,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}

// FailureResponse builds the error envelope straight from a service error,
// classifying it with the same taxonomy HTTPStatus uses.
func FailureResponse(message string, err error) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     err.Error(),
		Kind:      ErrorKind(err),
		Timestamp: time.Now(),
	}
}
