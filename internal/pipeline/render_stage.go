package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crholidays/voucher-standardizer/constants"
	"github.com/crholidays/voucher-standardizer/internal/common"
	"github.com/crholidays/voucher-standardizer/internal/entity"
	"github.com/crholidays/voucher-standardizer/internal/render"
)

// Renderer is satisfied by *render.Renderer.
type Renderer interface {
	Render(ctx context.Context, rec entity.VoucherRecord) ([]byte, error)
}

type RenderStage struct {
	Renderer Renderer
	Logger   *slog.Logger
	Now      func() time.Time
}

func NewRenderStage(r Renderer, logger *slog.Logger) *RenderStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderStage{Renderer: r, Logger: logger, Now: time.Now}
}

// Run sanitizes the session record's notes and renders it. The record stays
// in the session when rendering fails so the stage can be retried.
func (st *RenderStage) Run(ctx context.Context, s *Session) error {
	if !s.HasRecord() {
		return s.fail(common.NewAppError(common.CodeInput, "no record to render", common.ErrStageOrder))
	}
	s.Record.AdditionalInformation = entity.SanitizeStrings(s.Record.AdditionalInformation)

	pdf, err := st.Renderer.Render(ctx, *s.Record)
	if err != nil {
		return s.fail(fmt.Errorf("render voucher: %w", err))
	}

	s.PDF = pdf
	s.OutputName = render.OutputFilename(st.Now())
	s.Status = constants.StageStatusRendered
	s.Err = nil
	st.Logger.Info("pipeline.render.ok", "session_id", s.ID, "file", s.OutputName, "bytes", len(pdf))
	return nil
}
