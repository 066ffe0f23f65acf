// Package ingest finds the images to extract: explicit files, directory trees,
// and files that show up in watched directories.
package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/free-ocr/constants"
)

// Stats summarizes one Collect run.
type Stats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// Collect expands paths into image files. Files are kept when their extension
// is accepted; directories are walked recursively. Hidden entries are skipped
// when skipHidden is set, except for paths given explicitly.
func Collect(paths []string, skipHidden bool) ([]string, Stats, error) {
	var (
		out   []string
		stats Stats
		errs  []error
	)
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
		stats.Matched++
	}

	for _, root := range paths {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		info, err := os.Stat(root)
		if err != nil {
			stats.Failed++
			errs = append(errs, fmt.Errorf("stat %s: %w", root, err))
			continue
		}
		if !info.IsDir() {
			stats.Scanned++
			if constants.IsImageExt(filepath.Ext(root)) {
				add(root)
			} else {
				stats.Skipped++
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				stats.Failed++
				errs = append(errs, walkErr)
				return nil // continue walking
			}
			if path != root && skipHidden && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			stats.Scanned++
			if !constants.IsImageExt(filepath.Ext(path)) {
				stats.Skipped++
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("walk %s: %w", root, err))
		}
	}
	return out, stats, errors.Join(errs...)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
