package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// pdfToOCR rasterizes every page with pdftoppm and runs the recognizer on
// each image. It returns whatever text was gathered plus warnings.
func (e *Extractor) pdfToOCR(ctx context.Context, data []byte) (text string, pages int, warnings []string) {
	tmpDir, err := os.MkdirTemp("", "voucher-ocr-*")
	if err != nil {
		e.logger.Error("ocr.tempdir.failed", "error", err)
		return "", 0, []string{"ocr temp dir: " + err.Error()}
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			e.logger.Warn("failed to remove temp dir", "path", path, "error", err)
		}
	}(tmpDir)

	in := filepath.Join(tmpDir, "source.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return "", 0, []string{"ocr write source: " + err.Error()}
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, nil, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", in, prefix)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("pdftoppm: %v", err))
		if s := strings.TrimSpace(string(errb)); s != "" {
			warnings = append(warnings, s)
		}
		return "", 0, warnings
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...); pdftoppm zero-pads
	// page numbers so lexical order is page order.
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}
	}

	texts := make([]string, 0, len(matches))
	for i, img := range matches {
		txt, err := e.recognizer.Recognize(ctx, img)
		if err != nil {
			e.logger.Warn("ocr.page.failed", "page", i+1, "engine", e.recognizer.Name(), "error", err)
			warnings = append(warnings, fmt.Sprintf("ocr page %d: %v", i+1, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		texts = append(texts, txt)
	}
	return joinPages(texts), len(matches), warnings
}
