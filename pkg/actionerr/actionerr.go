// Package actionerr defines the classified failure type for anticipated,
// actionable errors: missing directories, missing tools, bad template
// configuration, failed external invocations. Anything not wrapped in an
// *Error is treated as unexpected by the outer boundary.
package actionerr

import (
	"errors"
	"fmt"
)

// Reason identifies the failure category for stable matching in tests and
// at the process boundary.
type Reason string

const (
	ReasonMissingPath  Reason = "MISSING_PATH"
	ReasonMissingTool  Reason = "MISSING_TOOL"
	ReasonBadOption    Reason = "BAD_OPTION"
	ReasonBuildFailed  Reason = "BUILD_FAILED"
	ReasonTestFailed   Reason = "TEST_FAILED"
	ReasonOutputWrite  Reason = "OUTPUT_WRITE"
	ReasonInvalidInput Reason = "INVALID_INPUT"
)

// Error is a classified action failure with a human-readable message
// naming the offending path, key, or tool.
type Error struct {
	Reason  Reason
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Reason, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Reason, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// New creates a classified failure with a formatted message.
func New(reason Reason, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a classified failure around an underlying error.
func Wrap(err error, reason Reason, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// As reports whether err (or anything it wraps) is a classified failure,
// returning it if so.
func As(err error) (*Error, bool) {
	var actionErr *Error
	if errors.As(err, &actionErr) {
		return actionErr, true
	}
	return nil, false
}
