package server

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/crholidays/voucher-standardizer/constants"
	"github.com/crholidays/voucher-standardizer/internal/common"
	"github.com/crholidays/voucher-standardizer/internal/entity"
	"github.com/crholidays/voucher-standardizer/internal/pipeline"
)

// readUpload reads the multipart "file" field and checks it is a PDF.
// It writes the error response itself and returns ok=false on failure.
func (s *Server) readUpload(c *gin.Context) (name string, data []byte, ok bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: fmt.Sprintf("No PDF file provided. Upload a file with the field name 'file'. Max size: %dMB.", s.maxUpload>>20),
			Code:    http.StatusBadRequest,
		})
		return "", nil, false
	}
	defer file.Close()

	if ext := filepath.Ext(header.Filename); !constants.IsAllowedExt(ext) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_file_type",
			Message: fmt.Sprintf("Unsupported file format '%s'. Only .pdf files are accepted.", ext),
			Code:    http.StatusBadRequest,
		})
		return "", nil, false
	}

	data, err = io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "read_error",
			Message: "Failed to read uploaded file",
			Code:    http.StatusBadRequest,
		})
		return "", nil, false
	}
	return header.Filename, data, true
}

// extractVoucher runs text extraction and field normalization.
// POST /api/v1/vouchers/extract
func (s *Server) extractVoucher(c *gin.Context) {
	name, data, ok := s.readUpload(c)
	if !ok {
		return
	}

	sess := pipeline.NewSession(name)
	s.mu.Lock()
	err := s.processor.ExtractFields(c.Request.Context(), sess, data)
	s.mu.Unlock()
	if err != nil {
		s.writeError(c, err, sess.Text, sess.RawJSON)
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{
		SessionID:  sess.ID,
		FileName:   sess.FileName,
		Method:     sess.Extraction.Method,
		Pages:      sess.Extraction.Pages,
		Confidence: sess.Extraction.Confidence,
		Warnings:   sess.Extraction.Warnings,
		Text:       sess.Text,
		Record:     *sess.Record,
	})
}

// renderVoucher renders a previously extracted (and possibly edited) record.
// POST /api/v1/vouchers/render
func (s *Server) renderVoucher(c *gin.Context) {
	var rec entity.VoucherRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		s.writeError(c, common.NewAppError(common.CodeInput, "invalid voucher record", fmt.Errorf("%w: %w", common.ErrInvalidInput, err)), "", nil)
		return
	}

	sess := pipeline.NewSession("")
	sess.SetRecord(rec)
	s.mu.Lock()
	err := s.processor.Render(c.Request.Context(), sess)
	s.mu.Unlock()
	if err != nil {
		s.writeError(c, err, "", nil)
		return
	}
	s.sendPDF(c, sess)
}

// standardizeVoucher runs every stage and returns the PDF.
// POST /api/v1/vouchers/standardize
func (s *Server) standardizeVoucher(c *gin.Context) {
	name, data, ok := s.readUpload(c)
	if !ok {
		return
	}

	sess := pipeline.NewSession(name)
	s.mu.Lock()
	err := s.processor.Process(c.Request.Context(), sess, data)
	s.mu.Unlock()
	if err != nil {
		s.writeError(c, err, sess.Text, sess.RawJSON)
		return
	}
	s.sendPDF(c, sess)
}

func (s *Server) sendPDF(c *gin.Context, sess *pipeline.Session) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sess.OutputName))
	c.Data(http.StatusOK, "application/pdf", sess.PDF)
}
