// Package async runs extractions for many images on a bounded worker pool.
package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/free-ocr/internal/extraction"
)

// Job is one image to extract.
type Job struct {
	Path        string
	SubmittedAt time.Time
}

// Result is the settled outcome of a Job.
type Result struct {
	Path     string
	Snapshot extraction.Snapshot
	Err      error
}

// Runner is what the CLI depends on.
type Runner interface {
	Run(ctx context.Context, jobs []Job) ([]Result, error)
}

var _ Runner = (*BatchRunner)(nil)
