package common

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError(t *testing.T) {
	cause := fmt.Errorf("%w: %w", ErrModelCall, errors.New("connection refused"))
	err := NewAppError(CodeModelCall, "chat completion request failed", cause)

	if !errors.Is(err, ErrModelCall) {
		t.Error("errors.Is does not reach the sentinel")
	}
	if !strings.Contains(err.Error(), "connection refused") || !strings.HasPrefix(err.Error(), CodeModelCall) {
		t.Errorf("Error() = %q", err.Error())
	}
	if NewAppError(CodeInput, "bad", nil).Error() != "INVALID_INPUT: bad" {
		t.Error("format without cause")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("stage: %w", ErrExtraction), "No text could be extracted from the PDF."},
		{NewAppError(CodeConfig, "x", ErrMissingConfig), "OpenAI API key not found. Please check your configuration."},
		{ErrMissingTemplate, "Template file not found. Please ensure templates/voucher_template.html exists."},
		{ErrMalformedOutput, "Failed to parse JSON from the language model response."},
		{ErrRendering, "Failed to generate PDF voucher."},
		{errors.New("boom"), "Unexpected error."},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "x") != nil {
		t.Error("nil should stay nil")
	}
	if err := WrapError(ErrRendering, "render"); !errors.Is(err, ErrRendering) || err.Error() != "render: voucher rendering failed" {
		t.Errorf("WrapError = %v", err)
	}
}
