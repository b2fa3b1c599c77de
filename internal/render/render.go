// Package render turns a VoucherRecord into the standardized PDF voucher.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crholidays/voucher-standardizer/constants"
	"github.com/crholidays/voucher-standardizer/internal/common"
	"github.com/crholidays/voucher-standardizer/internal/entity"
	"github.com/crholidays/voucher-standardizer/internal/runner"
)

type Config struct {
	AssetDir  string // holds templates/voucher_template.html and an optional logo.png
	Converter string // "weasyprint" (default) | "wkhtmltopdf"
	Binary    string // converter binary override
}

// Status reports which rendering assets are available.
type Status struct {
	TemplatePath  string `json:"template_path"`
	TemplateReady bool   `json:"template_ready"`
	LogoPath      string `json:"logo_path"`
	LogoFound     bool   `json:"logo_found"`
}

type Renderer struct {
	cfg       Config
	converter Converter
	logger    *slog.Logger
	now       func() time.Time
}

// view is the data handed to the template.
type view struct {
	entity.VoucherRecord
	LogoPath    string
	GeneratedOn string
}

var templateFuncs = template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"join": strings.Join,
}

// NewRenderer builds a renderer. A nil converter selects the external
// command configured in cfg.
func NewRenderer(cfg Config, conv Converter, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AssetDir == "" {
		cfg.AssetDir = "."
	}
	if abs, err := filepath.Abs(cfg.AssetDir); err == nil {
		cfg.AssetDir = abs
	}
	if conv == nil {
		conv = NewCommandConverter(cfg.Converter, cfg.Binary, runner.New(logger))
	}
	return &Renderer{cfg: cfg, converter: conv, logger: logger, now: time.Now}
}

func (r *Renderer) templatePath() string {
	return filepath.Join(r.cfg.AssetDir, constants.TemplateRelPath)
}

func (r *Renderer) logoPath() string {
	return filepath.Join(r.cfg.AssetDir, constants.LogoRelPath)
}

// Status checks the template and logo on disk.
func (r *Renderer) Status() Status {
	s := Status{TemplatePath: r.templatePath(), LogoPath: r.logoPath()}
	s.TemplateReady = isFile(s.TemplatePath)
	s.LogoFound = isFile(s.LogoPath)
	return s
}

// Render produces the PDF bytes for one record. Any failure yields no bytes.
func (r *Renderer) Render(ctx context.Context, rec entity.VoucherRecord) ([]byte, error) {
	ctx, rid := common.EnsureRequestID(ctx)
	start := time.Now()

	html, err := r.RenderHTML(rec)
	if err != nil {
		r.logger.Error("render.html.failed", "req_id", rid, "error", err)
		return nil, err
	}

	pdf, err := r.converter.Convert(ctx, html, r.cfg.AssetDir)
	if err != nil {
		r.logger.Error("render.convert.failed",
			"req_id", rid, "converter", r.converter.Name(), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, renderingError("convert html to pdf", err)
	}
	if !bytes.HasPrefix(pdf, []byte(constants.PDFMagic)) {
		r.logger.Error("render.convert.not_pdf", "req_id", rid, "converter", r.converter.Name(), "bytes", len(pdf))
		return nil, renderingError("converter output is not a PDF", nil)
	}

	r.logger.Info("render.ok",
		"req_id", rid,
		"converter", r.converter.Name(),
		"html_bytes", len(html),
		"pdf_bytes", len(pdf),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return pdf, nil
}

// RenderHTML executes the voucher template for rec. The notes list is
// sanitized first and the logo region is only filled when logo.png exists.
func (r *Renderer) RenderHTML(rec entity.VoucherRecord) ([]byte, error) {
	path := r.templatePath()
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.NewAppError(common.CodeRendering, "template not found at "+path, common.ErrMissingTemplate)
		}
		return nil, renderingError("read template", err)
	}

	tmpl, err := template.New(filepath.Base(path)).Funcs(templateFuncs).Parse(string(src))
	if err != nil {
		return nil, renderingError("parse template", err)
	}

	data := view{VoucherRecord: rec.Normalized(), GeneratedOn: r.now().Format("02 Jan 2006")}
	data.AdditionalInformation = entity.SanitizeStrings(rec.AdditionalInformation)
	if logo := r.logoPath(); isFile(logo) {
		data.LogoPath = logo
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, renderingError("execute template", err)
	}

	out, err := pruneEmptyListItems(buf.Bytes())
	if err != nil {
		return nil, renderingError("post-process html", err)
	}
	return out, nil
}

// OutputFilename names the generated voucher after the moment it was produced.
func OutputFilename(t time.Time) string {
	return constants.OutputFilenamePrefix + t.Format(constants.OutputTimestampLayout) + ".pdf"
}

func renderingError(msg string, err error) error {
	cause := common.ErrRendering
	if err != nil {
		cause = fmt.Errorf("%w: %w", common.ErrRendering, err)
	}
	return common.NewAppError(common.CodeRendering, msg, cause)
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
