package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRejected     = errors.New("rejected")
	ErrNotSignedIn  = errors.New("not signed in")
)
