//go:build gosseract

package ocr

import (
	"context"
	"log/slog"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/free-ocr/internal/common"
)

// GosseractClient runs OCR in-process through the native tesseract bindings.
// Build with -tags gosseract (requires libtesseract headers).
type GosseractClient struct {
	lang        string
	tessdataDir string
	logger      *slog.Logger
}

func NewGosseractClient(cfg TesseractConfig, logger *slog.Logger) *GosseractClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &GosseractClient{lang: cfg.Lang, tessdataDir: cfg.TessdataDir, logger: logger}
}

var _ Recognizer = (*GosseractClient)(nil)

func (c *GosseractClient) Recognize(ctx context.Context, image []byte) (Result, error) {
	start := time.Now()
	log := common.LoggerFrom(ctx, c.logger)
	if len(image) == 0 {
		return Result{}, common.InvalidInputf("image is empty")
	}

	client := gosseract.NewClient()
	defer client.Close()

	if c.tessdataDir != "" {
		if err := client.SetTessdataPrefix(c.tessdataDir); err != nil {
			return Result{}, common.Upstreamf(err, "set tessdata path")
		}
	}
	if err := client.SetLanguage(c.lang); err != nil {
		return Result{}, common.Upstreamf(err, "set language")
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return Result{}, common.Upstreamf(err, "set image")
	}
	text, err := client.Text()
	if err != nil {
		log.Error("ocr.gosseract.failed", "error", err)
		return Result{}, common.Upstreamf(err, "gosseract failed")
	}

	res := Result{Text: Normalize(text), Method: MethodGosseract, Duration: time.Since(start)}
	log.Info("ocr.gosseract.ok", "text_len", len(res.Text), "elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}

func newGosseractBackend(cfg common.OCRConfig, logger *slog.Logger) (Recognizer, error) {
	return NewGosseractClient(TesseractConfig{Lang: cfg.Lang, TessdataDir: cfg.TessdataDir}, logger), nil
}
