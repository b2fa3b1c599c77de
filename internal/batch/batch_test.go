package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/crholidays/voucher-standardizer/internal/pipeline"
)

type fakeProcessor struct {
	mu       sync.Mutex
	inFlight int
	maxSeen  int
	fail     map[string]bool
}

func (f *fakeProcessor) Process(_ context.Context, s *pipeline.Session, _ []byte) error {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	time.Sleep(time.Millisecond)
	if f.fail[s.FileName] {
		return errors.New("no text")
	}
	s.PDF = []byte("%PDF-1.7")
	s.OutputName = "standardized_voucher_20240501_120000.pdf"
	return nil
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.pdf", "a.PDF", "notes.txt", ".hidden.pdf", ".cache/x.pdf", "sub/c.pdf")

	got, err := Collect(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.PDF"), filepath.Join(dir, "b.pdf"), filepath.Join(dir, "sub", "c.pdf")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Collect = %v, want %v", got, want)
	}

	all, _ := Collect(dir, false)
	if len(all) != 5 {
		t.Errorf("Collect without skipping hidden = %d files, want 5", len(all))
	}

	if _, err := Collect(" ", true); err == nil {
		t.Error("blank root accepted")
	}
}

func TestQueue_ProcessesSequentially(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeFiles(t, src, "one.pdf", "two.pdf", "bad.pdf")

	proc := &fakeProcessor{fail: map[string]bool{"bad.pdf": true}}
	q := NewQueue(proc, out, nil, WithQueueSize(1))
	for _, n := range []string{"one.pdf", "two.pdf", "bad.pdf"} {
		if err := q.Enqueue(context.Background(), filepath.Join(src, n)); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	results := q.Shutdown(context.Background())

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if proc.maxSeen != 1 {
		t.Errorf("max in-flight = %d, want 1", proc.maxSeen)
	}

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		if !strings.HasPrefix(filepath.Base(r.Output), strings.TrimSuffix(filepath.Base(r.Path), ".pdf")+"_standardized_voucher_") {
			t.Errorf("output name %q", r.Output)
		}
		if _, err := os.Stat(r.Output); err != nil {
			t.Errorf("output not written: %v", err)
		}
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}

	if err := q.Enqueue(context.Background(), "late.pdf"); !errors.Is(err, ErrClosed) {
		t.Errorf("Enqueue after Shutdown = %v, want ErrClosed", err)
	}
}

func TestQueue_SameNameInDifferentFolders(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeFiles(t, src, "a/voucher.pdf", "b/voucher.pdf")

	paths, err := Collect(src, true)
	if err != nil {
		t.Fatal(err)
	}
	q := NewQueue(&fakeProcessor{}, out, nil, WithRoot(src))
	for _, p := range paths {
		if err := q.Enqueue(context.Background(), p); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	results := q.Shutdown(context.Background())

	got := map[string]bool{}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("%s: %v", r.Path, r.Err)
		}
		got[filepath.Base(r.Output)] = true
	}
	for _, want := range []string{
		"a_voucher_standardized_voucher_20240501_120000.pdf",
		"b_voucher_standardized_voucher_20240501_120000.pdf",
	} {
		if !got[want] {
			t.Errorf("missing output %s, got %v", want, got)
		}
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 2 {
		t.Errorf("output dir holds %d files, want 2", len(entries))
	}
}

func TestQueue_NeverOverwritesOutput(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeFiles(t, src, "voucher.pdf")
	existing := filepath.Join(out, "voucher_standardized_voucher_20240501_120000.pdf")
	if err := os.WriteFile(existing, []byte("keep me"), 0o644); err != nil {
		t.Fatal(err)
	}

	q := NewQueue(&fakeProcessor{}, out, nil, WithRoot(src))
	for i := 0; i < 2; i++ {
		if err := q.Enqueue(context.Background(), filepath.Join(src, "voucher.pdf")); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	results := q.Shutdown(context.Background())

	names := []string{}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("%s: %v", r.Path, r.Err)
		}
		names = append(names, filepath.Base(r.Output))
	}
	want := []string{
		"voucher_standardized_voucher_20240501_120000_2.pdf",
		"voucher_standardized_voucher_20240501_120000_3.pdf",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("outputs = %v, want %v", names, want)
	}
	if b, _ := os.ReadFile(existing); string(b) != "keep me" {
		t.Errorf("existing output was replaced: %q", b)
	}
}

func TestRun_UnqueuedPathsAreFailures(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeFiles(t, src, "one.pdf", "two.pdf")
	paths := []string{filepath.Join(src, "one.pdf"), filepath.Join(src, "two.pdf")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	proc := &fakeProcessor{}
	results := Run(ctx, NewQueue(proc, out, nil), paths)

	if len(results) != len(paths) {
		t.Fatalf("results = %d, want %d", len(results), len(paths))
	}
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("%s: err = %v, want context.Canceled", r.Path, r.Err)
		}
		if r.Output != "" {
			t.Errorf("%s: output %q for an unqueued file", r.Path, r.Output)
		}
	}
	if proc.maxSeen != 0 {
		t.Error("processor ran for unqueued files")
	}
}

func TestRun_ProcessesAll(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeFiles(t, src, "one.pdf", "two.pdf")
	paths, _ := Collect(src, true)

	results := Run(context.Background(), NewQueue(&fakeProcessor{}, out, nil, WithRoot(src)), paths)
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for _, r := range results {
		if r.Err != nil || r.Output == "" {
			t.Errorf("%s: output=%q err=%v", r.Path, r.Output, r.Err)
		}
	}
}
