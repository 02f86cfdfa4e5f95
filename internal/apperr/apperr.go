// Package apperr defines the error kinds shared by the order workflow and
// the HTTP handlers.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
)

// Kind classifies an error for the caller.
type Kind int

const (
	Unexpected Kind = iota
	NotFound
	InvalidInput
	InsufficientStock
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidInput:
		return "invalid_input"
	case InsufficientStock:
		return "insufficient_stock"
	default:
		return "unexpected"
	}
}

// HTTPStatus maps the kind to a response code.
func (k Kind) HTTPStatus() int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case InvalidInput, InsufficientStock:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error. Message is safe to show to clients.
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

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return newf(NotFound, format, args...)
}

func InvalidInputf(format string, args ...any) *Error {
	return newf(InvalidInput, format, args...)
}

func InsufficientStockf(format string, args ...any) *Error {
	return newf(InsufficientStock, format, args...)
}

// Wrap classifies err as Unexpected with a context message.
func Wrap(err error, message string) *Error {
	return &Error{Kind: Unexpected, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage returns the text a client may see. Unexpected errors only
// reveal their cause when verbose is set.
func PublicMessage(err error, verbose bool) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Unexpected {
		return e.Message
	}
	if verbose {
		return err.Error()
	}
	return "internal server error"
}
