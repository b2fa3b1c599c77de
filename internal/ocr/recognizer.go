package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/crholidays/voucher-standardizer/internal/runner"
)

// Recognizer turns one page image into text.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (string, error)
}

func newRecognizer(cfg Config, r runner.Runner) Recognizer {
	if cfg.Engine == "cli" {
		return &TesseractCLIRecognizer{Binary: cfg.Tesseract, Lang: cfg.TesseractLang, TessdataDir: cfg.TessdataDir, Runner: r}
	}
	return NewGosseractRecognizer(cfg.TesseractLang, cfg.TessdataDir)
}

// GosseractRecognizer runs Tesseract in-process through gosseract.
type GosseractRecognizer struct {
	Lang          string
	TessdataDir   string
	clientFactory func() *gosseract.Client
}

func NewGosseractRecognizer(lang, tessdataDir string) *GosseractRecognizer {
	return &GosseractRecognizer{Lang: lang, TessdataDir: tessdataDir, clientFactory: gosseract.NewClient}
}

func (g *GosseractRecognizer) Name() string { return "gosseract" }

func (g *GosseractRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := g.clientFactory()
	defer c.Close()

	if g.TessdataDir != "" {
		if err := c.SetTessdataPrefix(g.TessdataDir); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if g.Lang != "" {
		if err := c.SetLanguage(g.Lang); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

// TesseractCLIRecognizer shells out to the tesseract binary.
type TesseractCLIRecognizer struct {
	Binary      string
	Lang        string
	TessdataDir string
	Runner      runner.Runner
}

func (t *TesseractCLIRecognizer) Name() string { return "tesseract-cli" }

func (t *TesseractCLIRecognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", t.Lang}
	if t.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := t.Runner.Run(ctx, nil, t.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, runner.Truncate(string(errb), 512))
	}

	// minor cleanup of obvious line noise
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}
