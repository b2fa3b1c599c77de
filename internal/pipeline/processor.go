// Package pipeline runs the voucher stages over a Session.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/crholidays/voucher-standardizer/internal/common"
	"github.com/crholidays/voucher-standardizer/internal/llm"
)

// Stage names used in logs and metrics.
const (
	StageExtract   = "extract"
	StageNormalize = "normalize"
	StageRender    = "render"
)

// Observer is notified after every stage run.
type Observer interface {
	ObserveStage(stage string, err error, elapsed time.Duration)
}

// Processor coordinates text extraction, field normalization and rendering.
type Processor struct {
	logger       *slog.Logger
	extract      *ExtractStage
	normalize    *NormalizeStage
	render       *RenderStage
	stageTimeout time.Duration
	observer     Observer
}

type Option func(*Processor)

// WithStageTimeout bounds every stage with its own deadline.
func WithStageTimeout(d time.Duration) Option { return func(p *Processor) { p.stageTimeout = d } }

// WithObserver registers a stage observer (metrics).
func WithObserver(o Observer) Option { return func(p *Processor) { p.observer = o } }

func NewProcessor(logger *slog.Logger, tx TextExtractor, vx llm.VoucherExtractor, r Renderer, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:    logger,
		extract:   NewExtractStage(tx, logger),
		normalize: NewNormalizeStage(vx, logger),
		render:    NewRenderStage(r, logger),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract runs stage 1 on pdf.
func (p *Processor) Extract(ctx context.Context, s *Session, pdf []byte) error {
	return p.run(ctx, s, StageExtract, func(ctx context.Context) error {
		return p.extract.Run(ctx, s, pdf)
	})
}

// Normalize runs stage 2 on the session text.
func (p *Processor) Normalize(ctx context.Context, s *Session) error {
	return p.run(ctx, s, StageNormalize, func(ctx context.Context) error {
		return p.normalize.Run(ctx, s)
	})
}

// Render runs the sanitizer and renderer on the session record.
func (p *Processor) Render(ctx context.Context, s *Session) error {
	return p.run(ctx, s, StageRender, func(ctx context.Context) error {
		return p.render.Run(ctx, s)
	})
}

// ExtractFields is the first user action: text extraction then normalization.
func (p *Processor) ExtractFields(ctx context.Context, s *Session, pdf []byte) error {
	if err := p.Extract(ctx, s, pdf); err != nil {
		return err
	}
	return p.Normalize(ctx, s)
}

// Process runs every stage in order and stops at the first failure.
func (p *Processor) Process(ctx context.Context, s *Session, pdf []byte) error {
	if err := p.ExtractFields(ctx, s, pdf); err != nil {
		return err
	}
	return p.Render(ctx, s)
}

func (p *Processor) run(ctx context.Context, s *Session, stage string, fn func(context.Context) error) error {
	ctx = common.WithRequestID(ctx, s.ID)
	ctx, cancel := common.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	start := time.Now()
	p.logger.Debug("processor.stage.start", "stage", stage, "session_id", s.ID)
	err := fn(ctx)
	elapsed := time.Since(start)

	if p.observer != nil {
		p.observer.ObserveStage(stage, err, elapsed)
	}
	if err != nil {
		p.logger.Error("processor."+stage+".failed", "session_id", s.ID, "err", err, "elapsed_ms", elapsed.Milliseconds())
		return err
	}
	p.logger.Info("processor."+stage+".ok", "session_id", s.ID, "status", s.Status, "elapsed_ms", elapsed.Milliseconds())
	return nil
}
