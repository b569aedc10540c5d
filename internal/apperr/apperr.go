// Package apperr carries the typed outcomes returned by service operations.
// Handlers map a Kind to an HTTP status; the Message is safe to show callers.
package apperr

import "errors"

type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindConflict     Kind = "conflict"
	KindFull         Kind = "full"
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindRateLimited  Kind = "rate_limited"
	KindInternal     Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func InvalidState(msg string) *Error { return New(KindInvalidState, msg) }
func Conflict(msg string) *Error     { return New(KindConflict, msg) }
func Full(msg string) *Error         { return New(KindFull, msg) }
func Validation(msg string) *Error   { return New(KindValidation, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }

// KindOf returns the kind of the first *Error in err's chain. Anything else is
// an unexpected fault and reports KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the caller-facing text for err. Unexpected faults are not
// described beyond a generic message.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
