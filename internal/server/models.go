package server

import (
	"github.com/crholidays/voucher-standardizer/internal/entity"
)

// ErrorResponse is the error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	// Text and Raw are set when normalization fails after text was extracted,
	// so the caller can inspect what the model saw and answered.
	Text string `json:"text,omitempty"`
	Raw  string `json:"raw,omitempty"`
}

// ExtractResponse is returned by POST /api/v1/vouchers/extract.
type ExtractResponse struct {
	SessionID  string               `json:"session_id"`
	FileName   string               `json:"file_name"`
	Method     string               `json:"method"`
	Pages      int                  `json:"pages"`
	Confidence float32              `json:"confidence"`
	Warnings   []string             `json:"warnings,omitempty"`
	Text       string               `json:"text"`
	Record     entity.VoucherRecord `json:"record"`
}

// StatusResponse is returned by GET /api/v1/status.
type StatusResponse struct {
	AIExtraction string `json:"ai_extraction"` // ready | missing
	Model        string `json:"model"`
	Logo         string `json:"logo"`     // found | missing
	Template     string `json:"template"` // ready | missing
	TemplatePath string `json:"template_path"`
}
