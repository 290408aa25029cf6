package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the service either wraps one of these or is a storage failure.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrNotAvailable = errors.New("content not available")
)

// Error is a domain error of a given kind
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the kind so callers can match it with errors.Is
func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func validationError(format string, args ...any) error {
	return newError(ErrValidation, fmt.Sprintf(format, args...))
}

var (
	ErrSessionNotFound = newError(ErrNotFound, "session not found")
	ErrCityNotFound    = newError(ErrNotFound, "city not found")
	ErrCountryNotFound = newError(ErrNotFound, "country not found")
	ErrPlayerNotFound  = newError(ErrNotFound, "player not found")

	ErrNoEligibleCity        = newError(ErrNotAvailable, "no city with enough images available")
	ErrInsufficientCountries = newError(ErrNotAvailable, "not enough countries to build the choices")

	ErrAlreadyFinalized = newError(ErrConflict, "score already saved for this session")
	ErrSessionCompleted = newError(ErrConflict, "session is already completed")
	ErrHintUnavailable  = newError(ErrConflict, "hint not available")
)
