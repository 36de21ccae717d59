// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for the dispatcher.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrAlreadyRegistered = errors.New("descriptor already registered")
	ErrNotRegistered     = errors.New("descriptor not registered")
	ErrInvalidDescriptor = errors.New("invalid descriptor reported for live registration")
	ErrWaitFailed        = errors.New("readiness wait failed")
	ErrInterrupted       = errors.New("readiness wait interrupted")
	ErrReentrantRun      = errors.New("run called from within a callback")
	ErrNotSupported      = errors.New("operation not supported")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeAlreadyRegistered
	ErrCodeNotRegistered
	ErrCodeInvalidDescriptor
	ErrCodeWaitFailed
	ErrCodeReentrant
	ErrCodeNotSupported
	ErrCodeInternal
)

var codeSentinels = map[ErrorCode]error{
	ErrCodeInvalidArgument:   ErrInvalidArgument,
	ErrCodeAlreadyRegistered: ErrAlreadyRegistered,
	ErrCodeNotRegistered:     ErrNotRegistered,
	ErrCodeInvalidDescriptor: ErrInvalidDescriptor,
	ErrCodeWaitFailed:        ErrWaitFailed,
	ErrCodeReentrant:         ErrReentrantRun,
	ErrCodeNotSupported:      ErrNotSupported,
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel error that corresponds to e.Code.
func (e *Error) Is(target error) bool {
	s, ok := codeSentinels[e.Code]
	return ok && s == target
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause records the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}
