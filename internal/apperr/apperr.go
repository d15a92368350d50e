// Package apperr provides the typed error used across the ingestion pipeline.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of error
type Kind string

const (
	// KindUnsupportedFormat indicates a file extension the reader cannot handle
	KindUnsupportedFormat Kind = "UNSUPPORTED_FORMAT"

	// KindEmptyInput indicates a file that parsed to nothing
	KindEmptyInput Kind = "EMPTY_INPUT"

	// KindUndecodable indicates bytes that could not be decoded into a table
	KindUndecodable Kind = "UNDECODABLE"

	// KindUnreadableDocument indicates a corrupt or password-protected PDF
	KindUnreadableDocument Kind = "UNREADABLE_DOCUMENT"

	// KindNoExtractableText indicates a PDF without a text layer
	KindNoExtractableText Kind = "NO_EXTRACTABLE_TEXT"

	// KindSchema indicates missing core columns
	KindSchema Kind = "SCHEMA"

	KindNotFound     Kind = "NOT_FOUND"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindInput        Kind = "INPUT"
	KindInternal     Kind = "INTERNAL"
)

// Error is a domain error with context
type Error struct {
	Kind    Kind                   `json:"kind"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. This lets callers
// match package sentinels with errors.Is even after wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a new formatted error
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a kind and message
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Wrapf wraps an error with formatted context
func Wrapf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
