package extraction

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/rewrite"
)

// RewriteAll issues one rewrite per mode concurrently and waits until every call
// has settled. A failing mode lands in the returned failure set and has no entry
// in the results; it never affects the other modes. limit caps the number of
// calls in flight (<= 0 means one goroutine per mode).
//
// Passthrough modes are answered with baseText without a call.
func RewriteAll(
	ctx context.Context,
	r rewrite.Rewriter,
	baseText string,
	modes []constants.Mode,
	limit int,
	logger *slog.Logger,
) (map[constants.Mode]string, map[constants.Mode]struct{}) {
	log := common.LoggerFrom(ctx, logger)
	start := time.Now()

	results := make(map[constants.Mode]string, len(modes))
	failed := make(map[constants.Mode]struct{})

	var (
		mu   sync.Mutex
		g    errgroup.Group
		seen = make(map[constants.Mode]struct{}, len(modes))
	)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, mode := range modes {
		if _, dup := seen[mode]; dup {
			continue
		}
		seen[mode] = struct{}{}

		if mode.Passthrough() {
			results[mode] = baseText
			continue
		}

		mode := mode
		g.Go(func() error {
			callStart := time.Now()
			out, err := r.Rewrite(ctx, mode, baseText)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[mode] = struct{}{}
				log.Warn("extraction.rewrite.failed",
					"mode", string(mode),
					"error", err,
					"elapsed_ms", time.Since(callStart).Milliseconds(),
				)
				// join-all: never short-circuit the group
				return nil
			}
			results[mode] = out
			log.Debug("extraction.rewrite.ok",
				"mode", string(mode),
				"output_len", len(out),
				"elapsed_ms", time.Since(callStart).Milliseconds(),
			)
			return nil
		})
	}
	_ = g.Wait()

	log.Info("extraction.rewrite_all.settled",
		"modes", len(seen),
		"failed", len(failed),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return results, failed
}
