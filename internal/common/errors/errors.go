// Package errors provides standardized error handling for the report pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error for HTTP status / CLI exit mapping.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindRender     Kind = "render"
	KindConversion Kind = "conversion"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeUnknownClient    ErrorCode = "UNKNOWN_CLIENT"
	ErrCodeUnknownTemplate  ErrorCode = "UNKNOWN_TEMPLATE"
	ErrCodeInvalidLogoImage ErrorCode = "INVALID_LOGO_IMAGE"

	ErrCodeClientNotFound ErrorCode = "CLIENT_NOT_FOUND"
	ErrCodeReportNotFound ErrorCode = "REPORT_NOT_FOUND"

	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateInvalid  ErrorCode = "TEMPLATE_INVALID"
	ErrCodeRenderFailed     ErrorCode = "RENDER_FAILED"

	ErrCodeNoBackendAvailable ErrorCode = "NO_BACKEND_AVAILABLE"
	ErrCodeConversionFailed   ErrorCode = "CONVERSION_FAILED"
	ErrCodeConversionTimeout  ErrorCode = "CONVERSION_TIMEOUT"
	ErrCodeConversionNoOutput ErrorCode = "CONVERSION_NO_OUTPUT"
)

// Error represents a structured application error.
type Error struct {
	Kind      Kind      `json:"kind"`
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s[%s]: %s (%s)", e.Kind, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s[%s]: %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error for errors.Is / errors.As chains.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// ==========================
// Constructors
// ==========================

// NewValidationError creates a non-retryable caller-fault error.
func NewValidationError(code ErrorCode, message, details string) *Error {
	return &Error{
		Kind:      KindValidation,
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable lookup error.
func NewNotFoundError(code ErrorCode, resource, id string) *Error {
	return &Error{
		Kind:      KindNotFound,
		Code:      code,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   id,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderError creates a non-retryable templating error.
func NewRenderError(code ErrorCode, message, details string) *Error {
	return &Error{
		Kind:      KindRender,
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConversionError creates a conversion backend error. Conversion failures
// are the only kind a caller might reasonably retry.
func NewConversionError(code ErrorCode, message, details string) *Error {
	return &Error{
		Kind:      KindConversion,
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Inspection helpers
// ==========================

// KindOf returns the Kind of err, or an empty Kind for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CodeOf returns the ErrorCode of err, or an empty code for foreign errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsRender(err error) bool     { return KindOf(err) == KindRender }
func IsConversion(err error) bool { return KindOf(err) == KindConversion }

// IsRetryable reports whether a caller may retry after this error.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
