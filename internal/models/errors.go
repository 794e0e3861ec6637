package models

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrExtractionFailed = errors.New("extraction failed")
	ErrInvalidDocument  = errors.New("invalid extraction document")
	ErrUnknownService   = errors.New("unknown service")
	ErrInvalidInput     = errors.New("invalid input")
	ErrFileNotFound     = errors.New("file not found")
)

// CodeExtraction marks errors from the vision extraction step
const CodeExtraction = "extraction_failed"

// NewAppError builds an AppError
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
