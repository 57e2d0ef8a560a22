// Package apperr classifies failures into the kinds the HTTP layer reports.
package apperr

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind is the category of a failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindPersistence  Kind = "persistence"
	KindNotification Kind = "notification"
	KindInternal     Kind = "internal"
)

// Error carries the failing operation and its kind along with the cause.
type Error struct {
	Op      string // e.g. "order.Place"
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error without a cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Op: op, Kind: kind, Message: message}
}

// Wrap attaches a kind to err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: errors.WithStack(err)}
}

// Wrapf is Wrap with a message describing the failed step.
func Wrapf(kind Kind, op string, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...), Err: errors.WithStack(err)}
}

func Validation(op, message string) *Error { return New(KindValidation, op, message) }

func NotFound(op, message string) *Error { return New(KindNotFound, op, message) }

func Conflict(op, message string) *Error { return New(KindConflict, op, message) }

func Unauthorized(op, message string) *Error { return New(KindUnauthorized, op, message) }

func Forbidden(op, message string) *Error { return New(KindForbidden, op, message) }

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the human-facing message of err, falling back to its text.
func Message(err error) string {
	var e *Error
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Cause returns the innermost error below the apperr wrappers.
func Cause(err error) error {
	for {
		var e *Error
		if !stderrors.As(err, &e) || e.Err == nil {
			return errors.Cause(err)
		}
		err = e.Err
	}
}

// HTTPStatus maps an error onto a response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
