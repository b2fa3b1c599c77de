package common

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

// Pipeline failure taxonomy. Each stage wraps one of these so callers can
// branch with errors.Is.
var (
	ErrExtraction      = errors.New("no text could be extracted")
	ErrModelCall       = errors.New("language model call failed")
	ErrMalformedOutput = errors.New("malformed model output")
	ErrMissingConfig   = errors.New("missing configuration")
	ErrMissingTemplate = errors.New("voucher template not found")
	ErrRendering       = errors.New("voucher rendering failed")
	ErrInvalidInput    = errors.New("invalid input")
	ErrStageOrder      = errors.New("stage prerequisites not met")
)

// Error codes carried by AppError.
const (
	CodeExtraction = "EXTRACTION_ERROR"
	CodeModelCall  = "MODEL_CALL_ERROR"
	CodeMalformed  = "MALFORMED_OUTPUT"
	CodeConfig     = "CONFIG_ERROR"
	CodeRendering  = "RENDERING_ERROR"
	CodeInput      = "INVALID_INPUT"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// UserMessage converts a pipeline error into the message shown to a person.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrExtraction):
		return "No text could be extracted from the PDF."
	case errors.Is(err, ErrMissingTemplate):
		return "Template file not found. Please ensure templates/voucher_template.html exists."
	case errors.Is(err, ErrMissingConfig):
		return "OpenAI API key not found. Please check your configuration."
	case errors.Is(err, ErrMalformedOutput):
		return "Failed to parse JSON from the language model response."
	case errors.Is(err, ErrModelCall):
		return "Error calling the language model API."
	case errors.Is(err, ErrRendering):
		return "Failed to generate PDF voucher."
	case errors.Is(err, ErrStageOrder):
		return "Run the previous step first."
	case errors.Is(err, ErrInvalidInput):
		return "The uploaded file is not a valid PDF."
	default:
		return "Unexpected error."
	}
}
