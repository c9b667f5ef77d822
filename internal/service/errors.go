// Package service implements the resource managers. Every mutating
// operation runs the same pipeline: validate input, authorize the caller's
// role, check referenced entities, persist. The first failure aborts the
// operation before anything is written.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindExtraction
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindExtraction:
		return "extraction"
	default:
		return "internal"
	}
}

// Error is a classified failure with a client-safe message.
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

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string) error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

var errInsufficientRole = &Error{Kind: KindAuthorization, Message: "insufficient role"}

// ErrBadCredentials is returned by Login for unknown users and wrong
// passwords alike.
var ErrBadCredentials = &Error{Kind: KindAuthentication, Message: "incorrect username or password"}
