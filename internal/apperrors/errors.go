// Package apperrors defines the failure taxonomy of the application pipeline.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of pipeline failure.
type ErrorCode string

const (
	ErrCodeDocumentParse      ErrorCode = "DOCUMENT_PARSE_FAILED"
	ErrCodeModelUnavailable   ErrorCode = "MODEL_UNAVAILABLE"
	ErrCodeNotificationFailed ErrorCode = "NOTIFICATION_FAILED"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
)

// StandardError is a coded error that keeps its underlying cause.
type StandardError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// NewDocumentParseError reports a CV that could not be read as a PDF.
func NewDocumentParseError(filename string, cause error) *StandardError {
	return &StandardError{
		Code:    ErrCodeDocumentParse,
		Message: "failed to parse CV document",
		Details: filename,
		Cause:   cause,
	}
}

// NewModelUnavailableError reports a language model call that did not complete.
func NewModelUnavailableError(cause error) *StandardError {
	return &StandardError{
		Code:    ErrCodeModelUnavailable,
		Message: "language model unavailable",
		Cause:   cause,
	}
}

// NewNotificationError reports a mail delivery failure.
func NewNotificationError(recipient string, cause error) *StandardError {
	return &StandardError{
		Code:    ErrCodeNotificationFailed,
		Message: "failed to send email",
		Details: recipient,
		Cause:   cause,
	}
}

func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:    ErrCodeValidationFailed,
		Message: "invalid application submission",
		Details: details,
	}
}

// CodeOf returns the code of the first StandardError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func IsDocumentParse(err error) bool {
	return CodeOf(err) == ErrCodeDocumentParse
}

func IsModelUnavailable(err error) bool {
	return CodeOf(err) == ErrCodeModelUnavailable
}

func IsNotification(err error) bool {
	return CodeOf(err) == ErrCodeNotificationFailed
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidationFailed
}
