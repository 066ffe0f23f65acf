package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/async"
	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/export"
	"github.com/joseph-ayodele/free-ocr/internal/extraction"
	"github.com/joseph-ayodele/free-ocr/internal/ingest"
	"github.com/joseph-ayodele/free-ocr/internal/ocr"
	"github.com/joseph-ayodele/free-ocr/internal/render"
	"github.com/joseph-ayodele/free-ocr/internal/rewrite"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		proxy   = flag.String("proxy", "", "rewrite proxy base URL (defaults to calling OpenAI directly)")
		xlsx    = flag.String("xlsx", "", "write every result to this XLSX file")
		html    = flag.Bool("html", false, "print markdown results as HTML")
		workers = flag.Int("workers", 4, "images processed in parallel")
		mode    = flag.String("mode", string(constants.PrimaryMode), "mode printed to stdout")
		watch   = flag.Bool("watch", false, "keep watching directory arguments and extract new images")
		hidden  = flag.Bool("hidden", false, "include hidden files and directories")
	)
	flag.Usage = func() {
		printError("usage: freeocr [-proxy URL] [-xlsx out.xlsx] [-html] [-workers N] [-mode M] [-watch] image|dir...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}
	v := common.NewValidator().Field("mode", *mode, common.Required, common.KnownMode)
	if err := common.ValidateAndReturnError(v); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	printMode := constants.Mode(*mode)

	// Logs go to stderr so stdout stays pipeable
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *proxy != "" {
		cfg.Rewrite.ProxyURL = *proxy
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}

	recognizer, err := ocr.FromConfig(cfg.OCR, logger)
	if err != nil {
		logger.Error("failed to build ocr backend", "error", err)
		os.Exit(1)
	}
	rewriter := rewrite.FromConfig(cfg, logger)

	runner := async.NewBatchRunner(func() *extraction.Session {
		return extraction.NewSession(recognizer, rewriter, logger,
			extraction.WithConcurrency(cfg.Rewrite.Concurrency),
			extraction.WithMaxImageSide(cfg.OCR.MaxImageSide),
		)
	}, logger, async.WithWorkers(*workers))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths, stats, err := ingest.Collect(flag.Args(), !*hidden)
	if err != nil {
		logger.Warn("some inputs could not be read", "error", err)
	}
	logger.Info("inputs collected", "matched", stats.Matched, "scanned", stats.Scanned, "skipped", stats.Skipped, "failed", stats.Failed)

	jobs := make([]async.Job, 0, len(paths))
	for _, p := range paths {
		jobs = append(jobs, async.Job{Path: p})
	}

	results, err := runner.Run(ctx, jobs)
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	p := printer{mode: printMode, html: *html}
	failures := 0
	rows := make([]export.Row, 0, len(results))
	for _, res := range results {
		rows = append(rows, export.Row{Source: filepath.Base(res.Path), Snapshot: res.Snapshot})
		if !p.print(res) {
			failures++
		}
	}

	if *watch {
		rows = append(rows, watchDirs(ctx, flag.Args(), !*hidden, runner, p, logger)...)
	}

	if *xlsx != "" {
		b, err := export.NewService(logger).WorkbookXLSX(rows)
		if err != nil {
			logger.Error("failed to export results", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsx, b, 0644); err != nil {
			logger.Error("failed to write output file", "error", err)
			os.Exit(1)
		}
		logger.Info("export written", "output", *xlsx, "rows", len(rows))
	}

	if failures > 0 && !*watch {
		os.Exit(1)
	}
}

type printer struct {
	mode constants.Mode
	html bool
}

// print writes the selected mode of res to stdout and reports whether the extraction succeeded.
func (p printer) print(res async.Result) bool {
	if res.Err != nil {
		printError("%s: %v\n", res.Path, res.Err)
		return false
	}
	fmt.Printf("==> %s <==\n", res.Path)
	text, ok := res.Snapshot.Result(p.mode)
	switch {
	case !ok:
		fmt.Printf("(%s failed)\n", p.mode)
	case p.html && p.mode == constants.ModeMarkdown:
		out, err := render.MarkdownToHTML(text)
		if err != nil {
			printError("%s: render html: %v\n", res.Path, err)
			return true
		}
		fmt.Println(out)
	default:
		fmt.Println(text)
	}
	if failed := res.Snapshot.FailedModes(); len(failed) > 0 {
		printError("%s: failed modes: %v\n", res.Path, failed)
	}
	return true
}

// watchDirs extracts images as they appear under the directory arguments until ctx is done.
func watchDirs(ctx context.Context, args []string, skipHidden bool, runner *async.BatchRunner, p printer, logger *slog.Logger) []export.Row {
	var roots []string
	for _, a := range args {
		if info, err := os.Stat(a); err == nil && info.IsDir() {
			roots = append(roots, a)
		}
	}
	if len(roots) == 0 {
		logger.Warn("-watch needs at least one directory argument")
		return nil
	}
	events, err := ingest.Watch(ctx, ingest.WatchConfig{Roots: roots, SkipHidden: skipHidden}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		return nil
	}
	logger.Info("watching for new images", "roots", roots)

	var rows []export.Row
	for path := range events {
		results, err := runner.Run(ctx, []async.Job{{Path: path}})
		if err != nil {
			logger.Error("extraction failed", "path", path, "error", err)
			continue
		}
		for _, res := range results {
			rows = append(rows, export.Row{Source: filepath.Base(res.Path), Snapshot: res.Snapshot})
			p.print(res)
		}
	}
	return rows
}
