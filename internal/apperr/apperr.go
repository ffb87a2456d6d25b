// Package apperr defines the typed failures of the conversion pipeline.
package apperr

import (
	"errors"
	"fmt"
)

const (
	CodeStructure = "STRUCTURE_ERROR"
	CodeParse     = "PARSE_ERROR"
	CodeConfig    = "CONFIG_ERROR"
)

// Error is a coded pipeline failure. All codes are fatal for the run.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is a sentinel with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Message == "" && t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrStructure = &Error{Code: CodeStructure}
	ErrParse     = &Error{Code: CodeParse}
	ErrConfig    = &Error{Code: CodeConfig}
)

func Structuref(format string, args ...any) *Error {
	return &Error{Code: CodeStructure, Message: fmt.Sprintf(format, args...)}
}

func Parsef(format string, args ...any) *Error {
	return &Error{Code: CodeParse, Message: fmt.Sprintf(format, args...)}
}

func Configf(format string, args ...any) *Error {
	return &Error{Code: CodeConfig, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an existing error.
func Wrap(err error, code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
