package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failed backend call. Status is the HTTP status the backend
// answered with, or 0 when no response was received.
type Error struct {
	Message string
	Code    string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("backend unavailable: %s: %v", e.Message, e.Err)
		}
		return "backend unavailable: " + e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("backend error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// StatusOf returns the HTTP status carried by a backend error, or 0.
func StatusOf(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.Status
	}
	return 0
}

// errorBody is the JSON shape the backend uses for failures.
type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// newHTTPError builds the error for a non-2xx response. The backend's own
// message wins; otherwise "HTTP <status>: <status text>" is used.
func newHTTPError(status int, body errorBody) *Error {
	msg := body.Error
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
	}
	return &Error{Message: msg, Code: body.Code, Status: status}
}
