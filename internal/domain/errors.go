package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies client-facing validation failures.
type ErrorKind int

const (
	// InvalidHeader is a missing or unrecognized classification header.
	InvalidHeader ErrorKind = iota + 1
	// InvalidPath is a missing or empty required path parameter.
	InvalidPath
	// InvalidInput is any other value validation failure.
	InvalidInput
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidHeader:
		return "invalid_header"
	case InvalidPath:
		return "invalid_path"
	case InvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// ValidationError is returned when a request is rejected before any work is
// done. Its message is safe to show to callers.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches any ValidationError of the same kind, so the sentinels below can
// be used with errors.Is.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidHeader = &ValidationError{Kind: InvalidHeader, Message: "invalid header"}
	ErrInvalidPath   = &ValidationError{Kind: InvalidPath, Message: "invalid path"}
	ErrInvalidInput  = &ValidationError{Kind: InvalidInput, Message: "invalid input"}
)

// NewInvalidHeader returns an InvalidHeader error with the given message.
func NewInvalidHeader(msg string) error {
	return &ValidationError{Kind: InvalidHeader, Message: msg}
}

// NewInvalidPath returns an InvalidPath error with the given message.
func NewInvalidPath(msg string) error {
	return &ValidationError{Kind: InvalidPath, Message: msg}
}

// NewInvalidInput returns an InvalidInput error with the given message.
func NewInvalidInput(msg string) error {
	return &ValidationError{Kind: InvalidInput, Message: msg}
}

// IsClientError reports whether err should be answered with a 400.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrTransport matches every TransportError.
var ErrTransport = errors.New("queue transport failure")

// TransportError wraps a failure of the queue transport.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
