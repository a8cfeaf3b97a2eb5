package apperror

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a failure category. Every code maps to a distinct
// process exit code so shell callers can branch on the kind of failure.
type ErrorCode string

const (
	CodeIO         ErrorCode = "IO_ERROR"
	CodeFormat     ErrorCode = "FORMAT_ERROR"
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	CodeConfig     ErrorCode = "CONFIG_ERROR"
	CodeRender     ErrorCode = "RENDER_ERROR"
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
)

// AppError is a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new application error
func New(code ErrorCode, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Common error constructors

func ErrIO(details string, cause error) *AppError {
	return New(CodeIO, "File could not be read or written", details, cause)
}

func ErrFormat(details string) *AppError {
	return New(CodeFormat, "Input file is not a usable ticket export", details, nil)
}

func ErrValidation(details string) *AppError {
	return New(CodeValidation, "Ticket data is inconsistent", details, nil)
}

func ErrConfig(details string) *AppError {
	return New(CodeConfig, "Configuration error", details, nil)
}

func ErrRender(details string, cause error) *AppError {
	return New(CodeRender, "Report could not be written", details, cause)
}

// CodeOf extracts the error code from err, or CodeInternal when err does not
// carry an AppError anywhere in its chain.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ExitCode maps an error to the process exit code documented for the CLI.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CodeOf(err) {
	case CodeIO:
		return 1
	case CodeFormat:
		return 2
	case CodeValidation:
		return 3
	default:
		return 4
	}
}
