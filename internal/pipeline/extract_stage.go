package pipeline

import (
	"context"
	"log/slog"

	"github.com/crholidays/voucher-standardizer/constants"
	"github.com/crholidays/voucher-standardizer/internal/common"
	"github.com/crholidays/voucher-standardizer/internal/ocr"
)

// TextExtractor is satisfied by *ocr.Extractor.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) ocr.ExtractionResult
}

type ExtractStage struct {
	TextExtractor TextExtractor
	Logger        *slog.Logger
}

func NewExtractStage(tx TextExtractor, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{TextExtractor: tx, Logger: logger}
}

// Run extracts the text of pdf into the session. Downstream results from a
// previous document are cleared. Blank text is an ErrExtraction failure.
func (st *ExtractStage) Run(ctx context.Context, s *Session, pdf []byte) error {
	s.Text, s.Record, s.RawJSON, s.PDF, s.OutputName = "", nil, nil, nil, ""
	s.Extraction = ocr.ExtractionResult{}

	if !ocr.ValidatePDF(pdf) {
		return s.fail(common.NewAppError(common.CodeInput, "upload is not a PDF", common.ErrInvalidInput))
	}

	res := st.TextExtractor.Extract(ctx, pdf)
	s.Extraction = res
	for _, w := range res.Warnings {
		st.Logger.Warn("pipeline.extract.warning", "session_id", s.ID, "warning", w)
	}
	if res.Empty() {
		return s.fail(common.NewAppError(common.CodeExtraction, "no text in text layer or OCR output", common.ErrExtraction))
	}

	s.Text = res.Text
	s.Status = constants.StageStatusExtracted
	s.Err = nil
	st.Logger.Info("pipeline.extract.ok",
		"session_id", s.ID,
		"method", res.Method,
		"pages", res.Pages,
		"confidence", res.Confidence,
		"bytes", len(res.Text),
	)
	return nil
}
