package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/crholidays/voucher-standardizer/constants"
	"github.com/crholidays/voucher-standardizer/internal/common"
	"github.com/crholidays/voucher-standardizer/internal/entity"
	"github.com/crholidays/voucher-standardizer/internal/ocr"
)

var samplePDF = []byte("%PDF-1.7\nfake")

type fakeText struct {
	res   ocr.ExtractionResult
	calls int
}

func (f *fakeText) Extract(context.Context, []byte) ocr.ExtractionResult {
	f.calls++
	return f.res
}

type fakeVoucher struct {
	rec      entity.VoucherRecord
	raw      []byte
	err      error
	calls    int
	lastText string
}

func (f *fakeVoucher) ExtractVoucher(_ context.Context, text string) (entity.VoucherRecord, []byte, error) {
	f.calls++
	f.lastText = text
	if f.err != nil {
		return entity.VoucherRecord{}, f.raw, f.err
	}
	return f.rec, f.raw, nil
}

type fakeRenderer struct {
	err   error
	calls int
	got   entity.VoucherRecord
}

func (f *fakeRenderer) Render(_ context.Context, rec entity.VoucherRecord) ([]byte, error) {
	f.calls++
	f.got = rec
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 voucher"), nil
}

type stageLog struct{ stages []string }

func (o *stageLog) ObserveStage(stage string, err error, _ time.Duration) {
	if err != nil {
		stage += ":err"
	}
	o.stages = append(o.stages, stage)
}

func textResult(text string) ocr.ExtractionResult {
	return ocr.ExtractionResult{Text: text, Method: constants.MethodPDFText, Pages: 1}
}

func TestProcess_HappyPath(t *testing.T) {
	tx := &fakeText{res: textResult("Hotel Alpha voucher")}
	vx := &fakeVoucher{
		rec: entity.VoucherRecord{HotelName: "Hotel Alpha", AdditionalInformation: []string{"• Late check-out", "-"}}.Normalized(),
		raw: []byte(`{}`),
	}
	r := &fakeRenderer{}
	obs := &stageLog{}
	p := NewProcessor(nil, tx, vx, r, WithObserver(obs), WithStageTimeout(time.Second))

	s := NewSession("voucher.pdf")
	if err := p.Process(context.Background(), s, samplePDF); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if s.Status != constants.StageStatusRendered {
		t.Errorf("status = %s", s.Status)
	}
	if vx.lastText != "Hotel Alpha voucher" {
		t.Errorf("normalizer got %q", vx.lastText)
	}
	if !strings.HasPrefix(s.OutputName, "standardized_voucher_") || !strings.HasSuffix(s.OutputName, ".pdf") {
		t.Errorf("output name = %q", s.OutputName)
	}
	if got := strings.Join(r.got.AdditionalInformation, "|"); got != "Late check-out" {
		t.Errorf("renderer got notes %q", got)
	}
	if got := strings.Join(obs.stages, ","); got != "extract,normalize,render" {
		t.Errorf("observed %s", got)
	}
}

func TestExtract_NoTextStopsPipeline(t *testing.T) {
	tx := &fakeText{res: ocr.ExtractionResult{Method: constants.MethodNone, Warnings: []string{"pdftoppm: not found"}}}
	vx := &fakeVoucher{}
	p := NewProcessor(nil, tx, vx, &fakeRenderer{})

	s := NewSession("scan.pdf")
	err := p.ExtractFields(context.Background(), s, samplePDF)
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction", err)
	}
	if vx.calls != 0 {
		t.Error("normalizer called without text")
	}
	if s.Status != constants.StageStatusFailed || s.Err == nil {
		t.Errorf("session status=%s err=%v", s.Status, s.Err)
	}
	if common.UserMessage(err) != "No text could be extracted from the PDF." {
		t.Errorf("user message = %q", common.UserMessage(err))
	}
}

func TestExtract_RejectsNonPDF(t *testing.T) {
	tx := &fakeText{res: textResult("x")}
	p := NewProcessor(nil, tx, &fakeVoucher{}, &fakeRenderer{})

	err := p.Extract(context.Background(), NewSession("a.pdf"), []byte("GIF89a"))
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if tx.calls != 0 {
		t.Error("extractor ran on non-PDF input")
	}
}

func TestNormalizeFailure_KeepsText(t *testing.T) {
	modelErr := common.NewAppError(common.CodeMalformed, "bad json", common.ErrMalformedOutput)
	vx := &fakeVoucher{err: modelErr, raw: []byte("not json")}
	p := NewProcessor(nil, &fakeText{res: textResult("Hotel text")}, vx, &fakeRenderer{})

	s := NewSession("v.pdf")
	err := p.ExtractFields(context.Background(), s, samplePDF)
	if !errors.Is(err, common.ErrMalformedOutput) {
		t.Fatalf("err = %v", err)
	}
	if s.Text != "Hotel text" {
		t.Errorf("text lost after normalize failure: %q", s.Text)
	}
	if s.HasRecord() {
		t.Error("record set after normalize failure")
	}
	if string(s.RawJSON) != "not json" {
		t.Errorf("raw = %q", s.RawJSON)
	}

	// retry only the failed stage
	vx.err = nil
	vx.rec = entity.VoucherRecord{HotelName: "Hotel Alpha"}.Normalized()
	if err := p.Normalize(context.Background(), s); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if s.Status != constants.StageStatusNormalized || s.Record.HotelName != "Hotel Alpha" {
		t.Errorf("after retry status=%s record=%+v", s.Status, s.Record)
	}
}

func TestRenderFailure_KeepsRecord(t *testing.T) {
	r := &fakeRenderer{err: common.NewAppError(common.CodeRendering, "boom", common.ErrRendering)}
	p := NewProcessor(nil, &fakeText{}, &fakeVoucher{}, r)

	s := NewSession("")
	s.SetRecord(entity.VoucherRecord{HotelName: "Hotel Alpha"})

	err := p.Render(context.Background(), s)
	if !errors.Is(err, common.ErrRendering) {
		t.Fatalf("err = %v", err)
	}
	if !s.HasRecord() || s.PDF != nil {
		t.Errorf("record=%v pdf=%q", s.HasRecord(), s.PDF)
	}

	r.err = nil
	if err := p.Render(context.Background(), s); err != nil {
		t.Fatalf("retry render: %v", err)
	}
	if len(s.PDF) == 0 || s.Status != constants.StageStatusRendered {
		t.Errorf("status=%s pdf=%d bytes", s.Status, len(s.PDF))
	}
}

func TestStageOrder(t *testing.T) {
	p := NewProcessor(nil, &fakeText{}, &fakeVoucher{}, &fakeRenderer{})
	s := NewSession("")

	if err := p.Normalize(context.Background(), s); !errors.Is(err, common.ErrStageOrder) {
		t.Errorf("normalize without text: %v", err)
	}
	if err := p.Render(context.Background(), s); !errors.Is(err, common.ErrStageOrder) {
		t.Errorf("render without record: %v", err)
	}
}

func TestExtract_ClearsPreviousDocument(t *testing.T) {
	p := NewProcessor(nil, &fakeText{res: textResult("new text")}, &fakeVoucher{}, &fakeRenderer{})
	s := NewSession("")
	s.SetRecord(entity.VoucherRecord{HotelName: "Old"})
	s.PDF = []byte("%PDF-old")

	if err := p.Extract(context.Background(), s, samplePDF); err != nil {
		t.Fatal(err)
	}
	if s.HasRecord() || s.PDF != nil {
		t.Error("results of the previous document survived a new extraction")
	}
}

func TestExtract_NonPDFClearsPreviousDocument(t *testing.T) {
	p := NewProcessor(nil, &fakeText{res: textResult("new text")}, &fakeVoucher{}, &fakeRenderer{})
	s := NewSession("")
	s.Text = "old text"
	s.SetRecord(entity.VoucherRecord{HotelName: "Old"})
	s.PDF = []byte("%PDF-old")
	s.OutputName = "standardized_voucher_20240101_000000.pdf"

	err := p.Extract(context.Background(), s, []byte("GIF89a"))
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if s.HasText() || s.HasRecord() || s.PDF != nil || s.OutputName != "" {
		t.Errorf("previous document survived a rejected upload: text=%q record=%v pdf=%q name=%q",
			s.Text, s.HasRecord(), s.PDF, s.OutputName)
	}
	if s.Status != constants.StageStatusFailed {
		t.Errorf("status = %s", s.Status)
	}
}
