// Package apperr defines the typed errors shared by the search service and
// its transports. Transports map the Type to a status code; the wrapped Err
// and Stack are for logs only and never reach clients.
package apperr

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeInvalidInput ErrorType = "INVALID_INPUT"
	ErrTypeInternal     ErrorType = "INTERNAL"
	ErrTypeUnavailable  ErrorType = "UNAVAILABLE"
	ErrTypeRateLimit    ErrorType = "RATE_LIMIT"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		var stackErr *goerrors.Error
		if errors.As(err, &stackErr) {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

func RateLimit(message string, err error) *DomainError {
	return New(ErrTypeRateLimit, message, err)
}

// TypeOf returns the type of the first DomainError in err's chain, or
// ErrTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ErrTypeInternal
}

// Is reports whether err carries a DomainError of the given type.
func Is(err error, t ErrorType) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Type == t
}

// PublicMessage returns the client-safe message for err. Internal errors
// never expose their cause.
func PublicMessage(err error) string {
	var de *DomainError
	if !errors.As(err, &de) || de.Type == ErrTypeInternal {
		return "internal server error"
	}
	return de.Message
}
