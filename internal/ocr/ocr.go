package ocr

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/crholidays/voucher-standardizer/constants"
	"github.com/crholidays/voucher-standardizer/internal/runner"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Engine    string // "gosseract" (default) | "cli"

	TesseractLang string // default "eng"
	TessdataDir   string // optional tessdata override
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit
}

type ExtractionResult struct {
	Text       string
	Pages      int
	Method     string // constants.MethodPDFText | MethodPDFOCR | MethodNone
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// Empty reports whether no usable text was produced.
func (r ExtractionResult) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}

// TextLayer returns the digital text of every page, in order. On failure it
// returns the pages read so far together with the error.
type TextLayer func(data []byte) ([]string, error)

type Extractor struct {
	cfg        Config
	runner     runner.Runner
	recognizer Recognizer
	textLayer  TextLayer
	logger     *slog.Logger
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithRunner replaces the process runner used for rasterization.
func WithRunner(r runner.Runner) Option { return func(e *Extractor) { e.runner = r } }

// WithRecognizer replaces the OCR engine.
func WithRecognizer(r Recognizer) Option { return func(e *Extractor) { e.recognizer = r } }

// WithTextLayer replaces the digital text-layer reader.
func WithTextLayer(t TextLayer) Option { return func(e *Extractor) { e.textLayer = t } }

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.Engine == "" {
		cfg.Engine = "gosseract"
	}

	e := &Extractor{cfg: cfg, logger: logger, textLayer: readTextLayer}
	for _, opt := range opts {
		opt(e)
	}
	if e.runner == nil {
		e.runner = runner.New(logger)
	}
	if e.recognizer == nil {
		e.recognizer = newRecognizer(cfg, e.runner)
	}
	return e
}

// Extract returns the best-effort text of a PDF. The digital text layer is
// tried first; when it is blank every page is rasterized and OCR'd.
// Failures never escape: they are logged and collected in Warnings.
func (e *Extractor) Extract(ctx context.Context, data []byte) ExtractionResult {
	start := time.Now()
	res := ExtractionResult{Method: constants.MethodNone, Language: e.cfg.TesseractLang}
	e.logger.Debug("starting text extraction", "bytes", len(data), "engine", e.recognizer.Name())

	pages, err := e.textLayer(data)
	if err != nil {
		e.logger.Error("ocr.text_layer.failed", "error", err, "pages_read", len(pages))
		res.Warnings = append(res.Warnings, "pdf text layer: "+err.Error())
	}
	res.Pages = len(pages)

	if text := joinPages(pages); text != "" {
		res.Text = text
		res.Method = constants.MethodPDFText
		res.Confidence = heuristicConfidence(text)
		res.Duration = time.Since(start)
		e.logger.Info("ocr.text_layer.ok", "pages", res.Pages, "bytes", len(text), "elapsed_ms", res.Duration.Milliseconds())
		return res
	}

	e.logger.Info("ocr.text_layer.empty", "hint", "no text found in text layer, trying OCR")
	text, n, warns := e.pdfToOCR(ctx, data)
	res.Warnings = append(res.Warnings, warns...)
	if n > 0 {
		res.Pages = n
	}
	res.Text = Normalize(text)
	if res.Text != "" {
		res.Method = constants.MethodPDFOCR
		res.Confidence = heuristicConfidence(res.Text)
	}
	res.Duration = time.Since(start)
	e.logger.Info("ocr.fallback.done",
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res
}

// joinPages concatenates non-empty page texts with newlines.
func joinPages(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		if strings.TrimSpace(p) == "" {
			continue
		}
		b.WriteString(p)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
