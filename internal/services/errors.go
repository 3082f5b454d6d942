package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/task-colab-api/internal/workflow"
)

// Kind classifies a service error for the transport layer.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnavailable
)

// Error is a business rule violation. Sentinels are *Error values; dynamic
// errors wrap a sentinel so errors.Is keeps matching it.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// wrapf returns an error with a custom message that still matches sentinel.
func wrapf(sentinel *Error, format string, args ...interface{}) error {
	return &Error{Kind: sentinel.Kind, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}

// KindOf returns the kind of a service error, or 0 for unexpected errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// transitionError converts a workflow check failure into a service error.
func transitionError(entity string, err error) error {
	kind := KindBadRequest
	if errors.Is(err, workflow.ErrPartyNotAllowed) {
		kind = KindForbidden
	}
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf("cannot change %s status: %v", entity, err),
		Err:  err,
	}
}

var (
	ErrValidation = newError(KindBadRequest, "validation failed")
	ErrForbidden  = newError(KindForbidden, "you do not have permission to perform this action")
)
