// Package common defines shared constants, sentinel errors and the
// client-facing error type used across the server and client layers of
// authkeeper. Callers should use errors.Is / errors.As to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorBadRequest   = errors.New("bad request")

	// Token codec errors.
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
)

// Kind classifies a client-facing failure.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindBadRequest
	KindUnprocessable
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindBadRequest:
		return "bad_request"
	case KindUnprocessable:
		return "unprocessable_entity"
	default:
		return "internal"
	}
}

// Error is a failure that carries enough structure (kind, message and optional
// data) for a transport to render a response without re-deriving intent.
//
// Message is what the client sees. Err, when set, is the underlying cause and
// is only logged.
type Error struct {
	Kind    Kind
	Message string
	Data    any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match an *Error against the service-level sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrorUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrorForbidden:
		return e.Kind == KindForbidden
	case ErrorBadRequest:
		return e.Kind == KindBadRequest
	case ErrorInternal:
		return e.Kind == KindInternal
	}
	return false
}

// Unauthorized reports bad credentials or a token with the wrong claim shape.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Forbidden reports an expired, invalid or reused refresh token.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// BadRequest reports a domain-rule violation; msg is passed through verbatim.
func BadRequest(msg string, data any) *Error {
	return &Error{Kind: KindBadRequest, Message: msg, Data: data}
}

// Unprocessable reports request fields that failed validation.
func Unprocessable(msg string, data any) *Error {
	return &Error{Kind: KindUnprocessable, Message: msg, Data: data}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal Server Error", Err: err}
}

// AsError extracts an *Error from err. Anything else is reported as internal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
