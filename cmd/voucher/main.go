package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/crholidays/voucher-standardizer/internal/app"
	"github.com/crholidays/voucher-standardizer/internal/batch"
	"github.com/crholidays/voucher-standardizer/internal/common"
	"github.com/crholidays/voucher-standardizer/internal/entity"
	"github.com/crholidays/voucher-standardizer/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		in         = flag.String("in", "", "source voucher PDF")
		dir        = flag.String("dir", "", "standardize every voucher PDF under this directory")
		outDir     = flag.String("out", ".", "directory for the standardized voucher")
		recordPath = flag.String("record", "", "render a saved record JSON instead of extracting from -in")
		saveRecord = flag.String("save-record", "", "write the extracted record JSON to this path")
		status     = flag.Bool("status", false, "print credential and asset status and exit")
	)
	flag.Parse()

	cfg := common.LoadConfig()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: common.ParseLogLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	a := app.New(cfg, logger)

	if *status {
		printStatus(a)
		return
	}
	if *dir != "" {
		os.Exit(runBatch(a, *dir, *outDir, cfg.Pipeline.StageTimeout))
	}
	if *in == "" && *recordPath == "" {
		printError("Error: -in, -dir or -record is required\n")
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	sess, err := buildSession(ctx, a, *in, *recordPath)
	if err != nil {
		printError("Error: %s\n", common.UserMessage(err))
		logger.Debug("cli.failed", "error", err)
		if sess != nil && sess.HasText() && !sess.HasRecord() {
			printError("\nRaw extracted text:\n%s\n", sess.Text)
			if len(sess.RawJSON) > 0 {
				printError("\nRaw model response:\n%s\n", sess.RawJSON)
			}
		}
		os.Exit(1)
	}

	if *saveRecord != "" {
		if err := writeRecord(*saveRecord, *sess.Record); err != nil {
			printError("Error: save record: %v\n", err)
			os.Exit(1)
		}
	}

	if err := a.Processor.Render(ctx, sess); err != nil {
		printError("Error: %s\n", common.UserMessage(err))
		logger.Debug("cli.render.failed", "error", err)
		os.Exit(1)
	}

	dst := filepath.Join(*outDir, sess.OutputName)
	if err := os.WriteFile(dst, sess.PDF, 0o644); err != nil {
		printError("Error: write %s: %v\n", dst, err)
		os.Exit(1)
	}
	fmt.Println(dst)
}

// runBatch processes the vouchers under dir one after another and returns
// the process exit code.
func runBatch(a *app.App, dir, outDir string, stageTimeout time.Duration) int {
	paths, err := batch.Collect(dir, true)
	if err != nil {
		printError("Error: %v\n", err)
		return 1
	}
	if len(paths) == 0 {
		printError("No voucher PDFs found under %s\n", dir)
		return 1
	}

	q := batch.NewQueue(a.Processor, outDir, slog.Default(),
		batch.WithRoot(dir),
		batch.WithProcessTimeout(3*stageTimeout),
	)

	code := 0
	for _, r := range batch.Run(context.Background(), q, paths) {
		if r.Err != nil {
			printError("%s: %s\n", r.Path, common.UserMessage(r.Err))
			code = 1
			continue
		}
		fmt.Println(r.Output)
	}
	return code
}

// buildSession produces a session holding a record, either by running
// extraction and normalization on a PDF or by loading a saved record.
func buildSession(ctx context.Context, a *app.App, in, recordPath string) (*pipeline.Session, error) {
	if recordPath != "" {
		b, err := os.ReadFile(recordPath)
		if err != nil {
			return nil, err
		}
		var rec entity.VoucherRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, common.NewAppError(common.CodeInput, "invalid record file", errors.Join(common.ErrInvalidInput, err))
		}
		sess := pipeline.NewSession(filepath.Base(recordPath))
		sess.SetRecord(rec)
		return sess, nil
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return nil, err
	}
	sess := pipeline.NewSession(filepath.Base(in))
	if err := a.Processor.ExtractFields(ctx, sess, data); err != nil {
		return sess, err
	}
	return sess, nil
}

func writeRecord(path string, rec entity.VoucherRecord) error {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func printStatus(a *app.App) {
	st := a.Renderer.Status()

	ai := "Missing"
	if a.Model.APIKeyConfigured() {
		ai = "Ready (" + a.Model.Model() + ")"
	}
	logo := "Add logo.png for branding"
	if st.LogoFound {
		logo = "Found"
	}
	tmpl := "Missing (" + st.TemplatePath + ")"
	if st.TemplateReady {
		tmpl = "Ready"
	}
	fmt.Printf("AI Extraction: %s\nCompany Logo: %s\nPDF Generation: %s\n", ai, logo, tmpl)
}
