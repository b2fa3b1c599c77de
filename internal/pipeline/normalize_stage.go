package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crholidays/voucher-standardizer/constants"
	"github.com/crholidays/voucher-standardizer/internal/common"
	"github.com/crholidays/voucher-standardizer/internal/llm"
)

type NormalizeStage struct {
	Extractor llm.VoucherExtractor
	Logger    *slog.Logger
}

func NewNormalizeStage(vx llm.VoucherExtractor, logger *slog.Logger) *NormalizeStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &NormalizeStage{Extractor: vx, Logger: logger}
}

// Run turns the session text into a record.
// Preconditions: stage 1 produced non-empty text.
// On failure the text stays in the session and the raw model output, if
// any, is kept in RawJSON.
func (st *NormalizeStage) Run(ctx context.Context, s *Session) error {
	if !s.HasText() {
		return s.fail(common.NewAppError(common.CodeInput, "no extracted text to normalize", common.ErrStageOrder))
	}

	rec, raw, err := st.Extractor.ExtractVoucher(ctx, s.Text)
	s.RawJSON = raw
	if err != nil {
		return s.fail(fmt.Errorf("normalize fields: %w", err))
	}

	s.Record = &rec
	s.PDF, s.OutputName = nil, ""
	s.Status = constants.StageStatusNormalized
	s.Err = nil
	st.Logger.Info("pipeline.normalize.ok",
		"session_id", s.ID,
		"hotel", rec.HotelName,
		"rooms", len(rec.Rooms),
		"confirmed", rec.HasConfirmation(),
	)
	return nil
}
