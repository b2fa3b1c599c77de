// Package batch standardizes every voucher found under a directory, one
// document at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crholidays/voucher-standardizer/internal/pipeline"
)

// ErrClosed is returned by Enqueue after Shutdown.
var ErrClosed = errors.New("queue is shutting down")

const maxNameAttempts = 1000

// Processor is satisfied by *pipeline.Processor.
type Processor interface {
	Process(ctx context.Context, s *pipeline.Session, pdf []byte) error
}

type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

type Result struct {
	Path   string
	Output string
	Err    error
}

// Queue feeds jobs to a single worker so exactly one document is in flight.
type Queue struct {
	proc    Processor
	root    string
	outDir  string
	logger  *slog.Logger
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool

	resMu   sync.Mutex
	results []Result
}

type Option func(*Queue)

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithRoot names outputs after the source path relative to root, so
// same-named files in different folders stay apart.
func WithRoot(root string) Option {
	return func(q *Queue) { q.root = root }
}

func NewQueue(proc Processor, outDir string, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:    proc,
		outDir:  outDir,
		logger:  logger,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.logger.Debug("batch.worker.started")

			for job := range q.ch {
				res := q.process(job)
				q.resMu.Lock()
				q.results = append(q.results, res)
				q.resMu.Unlock()

				if res.Err != nil {
					q.logger.Error("batch.job.failed", "trace_id", job.TraceID, "path", job.Path, "error", res.Err)
				} else {
					q.logger.Info("batch.job.ok", "trace_id", job.TraceID, "path", job.Path, "output", res.Output)
				}
			}

			q.logger.Debug("batch.worker.stopped")
		}()
	})
}

func (q *Queue) process(job Job) Result {
	res := Result{Path: job.Path}

	data, err := os.ReadFile(job.Path)
	if err != nil {
		res.Err = err
		return res
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	sess := pipeline.NewSession(filepath.Base(job.Path))
	if err := q.proc.Process(ctx, sess, data); err != nil {
		res.Err = err
		return res
	}

	// prefix with the source name: several vouchers can render within one second
	out, err := writeNew(q.outDir, q.outputStem(job.Path)+"_"+sess.OutputName, sess.PDF)
	if err != nil {
		res.Err = err
		return res
	}
	res.Output = out
	return res
}

// outputStem turns a source path into a file-name prefix: the path relative
// to the batch root without its extension, separators replaced by "_".
func (q *Queue) outputStem(path string) string {
	rel := filepath.Base(path)
	if q.root != "" {
		if r, err := filepath.Rel(q.root, path); err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			rel = r
		}
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "_")
}

// writeNew writes data to dir/name without replacing an existing file. A
// taken name gets a numeric suffix before its extension.
func writeNew(dir, name string, data []byte) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i <= maxNameAttempts; i++ {
		candidate := name
		if i > 1 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", err
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("no free output name for %s in %s", name, dir)
}

// Enqueue submits a voucher path. It blocks while the buffer is full.
func (q *Queue) Enqueue(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	job := Job{Path: path, SubmittedAt: time.Now(), TraceID: uuid.NewString()}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", path)
		return ErrClosed
	}
	select {
	case q.ch <- job:
		q.logger.Debug("batch.job.queued", "trace_id", job.TraceID, "path", path)
		return nil
	default:
	}

	q.logger.Warn("queue full, applying backpressure", "path", path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake, waits for queued jobs to finish (or ctx to end)
// and returns the results gathered so far in completion order.
func (q *Queue) Shutdown(ctx context.Context) []Result {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Debug("queue drained, shutdown complete")
	}

	q.resMu.Lock()
	defer q.resMu.Unlock()
	return append([]Result(nil), q.results...)
}

// Run queues every path, drains q and returns one Result per path. A path
// that could not be queued is reported as a failed Result.
func Run(ctx context.Context, q *Queue, paths []string) []Result {
	var rejected []Result
	for _, p := range paths {
		if err := q.Enqueue(ctx, p); err != nil {
			rejected = append(rejected, Result{Path: p, Err: fmt.Errorf("enqueue: %w", err)})
		}
	}
	return append(q.Shutdown(context.WithoutCancel(ctx)), rejected...)
}
