// Package app wires the pipeline components from configuration.
package app

import (
	"log/slog"

	"github.com/crholidays/voucher-standardizer/internal/common"
	"github.com/crholidays/voucher-standardizer/internal/llm/openai"
	"github.com/crholidays/voucher-standardizer/internal/observability"
	"github.com/crholidays/voucher-standardizer/internal/ocr"
	"github.com/crholidays/voucher-standardizer/internal/pipeline"
	"github.com/crholidays/voucher-standardizer/internal/render"
	"github.com/crholidays/voucher-standardizer/internal/runner"
)

type App struct {
	Extractor *ocr.Extractor
	Model     *openai.Client
	Renderer  *render.Renderer
	Metrics   *observability.Metrics
	Processor *pipeline.Processor
}

// New builds every component from cfg. The API key is not required here:
// the model client resolves it on each call.
func New(cfg *common.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	run := runner.New(logger)

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		Engine:        cfg.OCR.Engine,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger, ocr.WithRunner(run))

	model := openai.NewClient(openai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, logger)

	renderer := render.NewRenderer(render.Config{
		AssetDir:  cfg.Render.AssetDir,
		Converter: cfg.Render.Converter,
		Binary:    cfg.Render.Binary,
	}, render.NewCommandConverter(cfg.Render.Converter, cfg.Render.Binary, run), logger)

	metrics := observability.NewMetrics()
	processor := pipeline.NewProcessor(logger, extractor, model, renderer,
		pipeline.WithStageTimeout(cfg.Pipeline.StageTimeout),
		pipeline.WithObserver(metrics),
	)

	return &App{
		Extractor: extractor,
		Model:     model,
		Renderer:  renderer,
		Metrics:   metrics,
		Processor: processor,
	}
}
