package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure carries an HTTP-class code alongside the message so controllers
// can map service errors without string matching. Fields enumerates every
// failing field on validation errors; Conflict carries the competing
// entity's summary on 409s (e.g. the overlapping booking) so the caller can
// explain the rejection.
type Failure struct {
	Code     int               `json:"code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Conflict interface{}       `json:"conflict,omitempty"`

	cause error
}

func (f *Failure) Error() string {
	return f.Message
}

// NotFound builds a 404 failure for an unresolved id.
func NotFound(resource string, id interface{}) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("%s %v not found", resource, id),
	}
}

// Conflict builds a 409 failure. detail may be nil.
func Conflict(msg string, detail interface{}) error {
	return &Failure{
		Code:     http.StatusConflict,
		Message:  msg,
		Conflict: detail,
	}
}

// Validation builds a 400 failure enumerating all failing fields.
func Validation(fields map[string]string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: "validation failed",
		Fields:  fields,
	}
}

// BadRequest builds a 400 failure from a plain message.
func BadRequest(msg string) error {
	return &Failure{Code: http.StatusBadRequest, Message: msg}
}

// Internal wraps an unexpected error. The original error is kept for the
// logs; callers only ever see the generic message.
func Internal(err error) error {
	return &Failure{
		Code:    http.StatusInternalServerError,
		Message: "internal error",
		cause:   err,
	}
}

func (f *Failure) Unwrap() error { return f.cause }

// AsFailure extracts a *Failure from an error chain, defaulting to a 500.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Code: http.StatusInternalServerError, Message: "internal error", cause: err}
}
