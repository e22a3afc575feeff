// Package apperr defines the error kinds the API surfaces and their HTTP
// status mapping: validation (400), not found (404), storage (500).
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindStorage
)

// Error carries a user-facing message and an optional wrapped cause.
// The cause is for logs only and never reaches the client.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports missing or malformed required input.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NotFound reports an absent referenced entity.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Storage reports a backend read/write/blob failure.
func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}

// HTTPStatus maps an error to its response status. Unclassified errors are
// treated as storage failures.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindValidation:
			return http.StatusBadRequest
		case KindNotFound:
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}

// Message returns the user-facing message for err. Unclassified errors get
// a generic message; the detail belongs in the logs.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal server error"
}
