package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/free-ocr/constants"
)

type WatchConfig struct {
	Roots      []string      // directories to watch (recursive)
	SkipHidden bool          // ignore dot files and dot directories
	Debounce   time.Duration // coalesce rapid create/write bursts per file
}

// Watch emits the path of every accepted image created or rewritten under
// cfg.Roots. The channel is closed when ctx is done.
func Watch(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, errors.New("no roots provided")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	addTree := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && cfg.SkipHidden && IsHidden(path) {
				return filepath.SkipDir
			}
			return w.Add(path)
		})
	}
	for _, r := range cfg.Roots {
		if err := addTree(r); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	out := make(chan string, 64)
	go func() {
		defer close(out)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("ingest.watch.close_error", "error", err)
			}
		}()

		pending := map[string]time.Time{}
		ticker := time.NewTicker(cfg.Debounce / 2)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if cfg.SkipHidden && IsHidden(e.Name) {
					continue
				}
				if e.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
						if err := addTree(e.Name); err != nil {
							logger.Warn("ingest.watch.add_dir_failed", "path", e.Name, "error", err)
						}
						continue
					}
				}
				if e.Op.Has(fsnotify.Create) || e.Op.Has(fsnotify.Write) {
					if constants.IsImageExt(filepath.Ext(e.Name)) {
						pending[e.Name] = time.Now()
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watch.error", "error", err)
			case now := <-ticker.C:
				for p, last := range pending {
					if now.Sub(last) < cfg.Debounce {
						continue
					}
					delete(pending, p)
					select {
					case out <- p:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out, nil
}
