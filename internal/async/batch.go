package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/extraction"
)

// SessionFactory builds a fresh Session per job so jobs never share state.
type SessionFactory func() *extraction.Session

// BatchRunner processes jobs with a fixed number of workers.
type BatchRunner struct {
	newSession SessionFactory
	logger     *slog.Logger
	workers    int
	timeout    time.Duration
}

type Option func(*BatchRunner)

func WithWorkers(n int) Option {
	return func(b *BatchRunner) {
		if n > 0 {
			b.workers = n
		}
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(b *BatchRunner) {
		if d > 0 {
			b.timeout = d
		}
	}
}

func NewBatchRunner(newSession SessionFactory, logger *slog.Logger, opts ...Option) *BatchRunner {
	if logger == nil {
		logger = slog.Default()
	}
	b := &BatchRunner{
		newSession: newSession,
		logger:     logger,
		workers:    4,
		timeout:    3 * time.Minute,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

type jobParam struct {
	ctx context.Context
	idx int
	job Job
}

// Run extracts every job and returns results in job order. A failing job never
// stops the others; its error is carried in its Result.
func (b *BatchRunner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results, nil
	}

	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(b.workers, func(args any) {
		p, ok := args.(*jobParam)
		if !ok {
			panic("batch pool args type error")
		}
		defer wg.Done()
		results[p.idx] = b.process(p.ctx, p.job)
	})
	if err != nil {
		return nil, fmt.Errorf("create batch pool: %w", err)
	}
	defer pool.Release()

	for i, job := range jobs {
		if job.SubmittedAt.IsZero() {
			job.SubmittedAt = time.Now()
		}
		wg.Add(1)
		if err := pool.Invoke(&jobParam{ctx: ctx, idx: i, job: job}); err != nil {
			wg.Done()
			results[i] = Result{Path: job.Path, Err: fmt.Errorf("submit job: %w", err)}
		}
	}
	wg.Wait()
	return results, nil
}

func (b *BatchRunner) process(ctx context.Context, job Job) Result {
	log := b.logger.With("path", job.Path)
	if !constants.IsImageExt(filepath.Ext(job.Path)) {
		log.Warn("batch.skip_unsupported_extension")
		return Result{Path: job.Path, Err: common.InvalidInputf("unsupported file extension %q", filepath.Ext(job.Path))}
	}
	data, err := os.ReadFile(job.Path)
	if err != nil {
		log.Error("batch.read_failed", "error", err)
		return Result{Path: job.Path, Err: fmt.Errorf("read image: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	snap, err := b.newSession().Extract(ctx, data)
	switch {
	case err == nil:
		log.Info("batch.processed", "failed_modes", len(snap.Failed), "queue_wait_ms", time.Since(job.SubmittedAt).Milliseconds())
	case errors.Is(err, extraction.ErrSuperseded):
		log.Warn("batch.superseded")
	default:
		log.Error("batch.failed", "error", err)
	}
	return Result{Path: job.Path, Snapshot: snap, Err: err}
}
