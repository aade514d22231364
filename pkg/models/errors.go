package models

import (
	"errors"
	"fmt"
)

// Error codes attached to failed outcomes.
const (
	ErrCodeNavigation = "NAVIGATION_FAILED"
	ErrCodeTimeout    = "EXTRACTION_TIMEOUT"
	ErrCodeExtraction = "EXTRACTION_FAILED"
	ErrCodeUnexpected = "UNEXPECTED_ERROR"

	// Used by the HTTP API only, never attached to an outcome.
	ErrCodeInvalidInput = "INVALID_INPUT"
)

// ErrorDetail is the structured error returned by the HTTP API.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Error()}
}

// AsScrapeError returns err as a *ScrapeError, wrapping anything else as
// an unexpected error.
func AsScrapeError(err error) *ScrapeError {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	msg := "unexpected error"
	if err != nil {
		msg = err.Error()
	}
	return &ScrapeError{Code: ErrCodeUnexpected, Message: msg}
}
