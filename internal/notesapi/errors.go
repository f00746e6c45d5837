package notesapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNoteNotFound = errors.New("note not found")
	ErrEmptyID      = errors.New("note id or share token empty")
)

// ApiError is returned for every non 2xx answer of the notes backend.
// A 404 ApiError matches ErrNoteNotFound with errors.Is.
// Detail is meant for users, Message is internal and only ends up in logs.
type ApiError struct {
	StatusCode int
	Detail     string
	Message    string
}

func (e *ApiError) Error() string {
	reason := e.Detail
	if reason == "" {
		reason = e.Message
	}
	if reason == "" {
		return fmt.Sprintf("notes api responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("notes api responded with status %d: %s", e.StatusCode, reason)
}

func (e *ApiError) Is(target error) bool {
	return target == ErrNoteNotFound && e.StatusCode == http.StatusNotFound
}

func newApiError(statusCode int, body []byte) *ApiError {
	detail, message := errorReasons(body)
	return &ApiError{
		StatusCode: statusCode,
		Detail:     detail,
		Message:    message,
	}
}

// errorReasons reads the "detail" and "message" strings of a json error body.
func errorReasons(body []byte) (detail, message string) {
	var errBody map[string]any
	if err := json.Unmarshal(body, &errBody); err != nil {
		return "", ""
	}
	detail, _ = errBody["detail"].(string)
	message, _ = errBody["message"].(string)
	return detail, message
}
