package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// ErrInvalidOptions covers Generate options outside documented ranges
	// (spec §6/§7); raised before any collaborator is touched.
	ErrInvalidOptions = New("INVALID_OPTIONS", http.StatusBadRequest, "invalid generation options")
	// ErrInputInconsistent covers entity-level invariant violations found
	// while building the Input Snapshot (§4.B). Carries the offending ids
	// via Wrap.
	ErrInputInconsistent = New("INPUT_INCONSISTENT", http.StatusUnprocessableEntity, "input snapshot is inconsistent")
	// ErrHardcodedConflict covers two immutable placements colliding at
	// seed time (§4.E step 1).
	ErrHardcodedConflict = New("HARDCODED_CONFLICT", http.StatusConflict, "hardcoded placements conflict")
	// ErrInvalidTimeWindow covers dayEnd <= dayStart (§4.A).
	ErrInvalidTimeWindow = New("INVALID_TIME_WINDOW", http.StatusBadRequest, "invalid day time window")
	// ErrInvalidSlotDuration covers a slot duration that does not divide
	// the day span (§4.A).
	ErrInvalidSlotDuration = New("INVALID_SLOT_DURATION", http.StatusBadRequest, "slot duration does not divide day span")
	// ErrInvalidLunchWindow covers a lunch interval outside [dayStart, dayEnd] (§4.A).
	ErrInvalidLunchWindow = New("INVALID_LUNCH_WINDOW", http.StatusBadRequest, "lunch window outside day span")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
