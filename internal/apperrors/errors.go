// Package apperrors holds the user-facing error taxonomy shared by the use cases
// and the HTTP layer.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrInvalidInput      = errors.New("invalid input")
)

// Error is an application error with a message safe to return to the client.
// errors.Is matches it against its Kind.
type Error struct {
	Kind    error
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg, Status: http.StatusNotFound}
}

func InsufficientFunds() *Error {
	return &Error{Kind: ErrInsufficientFunds, Message: "insufficient funds", Status: http.StatusBadRequest}
}

func Conflict(msg string) *Error {
	return &Error{Kind: ErrConflict, Message: msg, Status: http.StatusConflict}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: ErrUnauthorized, Message: msg, Status: http.StatusUnauthorized}
}

func InvalidAmount(msg string) *Error {
	return &Error{Kind: ErrInvalidAmount, Message: msg, Status: http.StatusBadRequest}
}

func InvalidOperation(msg string) *Error {
	return &Error{Kind: ErrInvalidOperation, Message: msg, Status: http.StatusBadRequest}
}

func InvalidInput(msg string) *Error {
	return &Error{Kind: ErrInvalidInput, Message: msg, Status: http.StatusBadRequest}
}

// StatusOf returns the HTTP status carried by err, or 500 for anything that is
// not an application error.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
