package models

import "fmt"

// Kind classifies a service error for propagation-policy and HTTP-status
// mapping at the transport boundary.
type Kind string

const (
	KindAuth        Kind = "auth"
	KindRate        Kind = "rate"
	KindInput       Kind = "input"
	KindNotFound    Kind = "not_found"
	KindUpstream    Kind = "upstream"
	KindPersistence Kind = "persistence"
)

// Error is a typed, wrapped error carrying a propagation Kind.
type Error struct {
	Kind  Kind
	Msg   string
	Field string // set for KindInput: the offending field
	Err   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Kind, e.Msg, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func NewAuthError(msg string) *Error { return &Error{Kind: KindAuth, Msg: msg} }

func NewRateError(msg string) *Error { return &Error{Kind: KindRate, Msg: msg} }

func NewInputError(field, msg string) *Error {
	return &Error{Kind: KindInput, Msg: msg, Field: field}
}

func NewNotFoundError(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }

func NewUpstreamError(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: err}
}

func NewPersistenceError(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Msg: msg, Err: err}
}

// KindOf extracts the Kind of an error, defaulting to KindUpstream for
// errors not produced by this package (treated as opaque failures).
func KindOf(err error) Kind {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	}
	if e == nil {
		return KindUpstream
	}
	return e.Kind
}
