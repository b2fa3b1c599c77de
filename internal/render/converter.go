package render

import (
	"context"
	"fmt"

	"github.com/crholidays/voucher-standardizer/internal/runner"
)

// Converter turns a rendered HTML document into PDF bytes. baseDir is where
// relative asset references resolve.
type Converter interface {
	Name() string
	Convert(ctx context.Context, html []byte, baseDir string) ([]byte, error)
}

// CommandConverter pipes HTML through an external HTML-to-PDF engine.
type CommandConverter struct {
	Kind   string // "weasyprint" | "wkhtmltopdf"
	Binary string
	Runner runner.Runner
}

func NewCommandConverter(kind, binary string, r runner.Runner) *CommandConverter {
	if kind == "" {
		kind = "weasyprint"
	}
	if binary == "" {
		binary = kind
	}
	return &CommandConverter{Kind: kind, Binary: binary, Runner: r}
}

func (c *CommandConverter) Name() string { return c.Kind }

func (c *CommandConverter) Convert(ctx context.Context, html []byte, baseDir string) ([]byte, error) {
	var args []string
	switch c.Kind {
	case "weasyprint":
		// weasyprint --base-url <dir> - -
		args = []string{"--base-url", baseDir, "-", "-"}
	case "wkhtmltopdf":
		// wkhtmltopdf reads stdin and writes stdout with "-"
		args = []string{"--quiet", "--enable-local-file-access", "--encoding", "utf-8", "-", "-"}
	default:
		return nil, fmt.Errorf("unknown converter %q", c.Kind)
	}

	out, errb, err := c.Runner.Run(ctx, html, c.Binary, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", c.Kind, err, runner.Truncate(string(errb), 512))
	}
	return out, nil
}
