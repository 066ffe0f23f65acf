package ocr

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/joseph-ayodele/free-ocr/internal/common"
)

// TesseractConfig configures the local tesseract CLI backend.
type TesseractConfig struct {
	Binary      string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	TessdataDir string
	PSM         int // e.g., 6 is good for uniform block of text
}

// TesseractClient shells out to the tesseract CLI.
type TesseractClient struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseractClient(cfg TesseractConfig, logger *slog.Logger) *TesseractClient {
	if logger == nil {
		logger = slog.Default()
	}
	return newTesseractClient(cfg, execRunner{logger: logger}, logger)
}

func newTesseractClient(cfg TesseractConfig, r Runner, logger *slog.Logger) *TesseractClient {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &TesseractClient{cfg: cfg, runner: r, logger: logger}
}

var _ Recognizer = (*TesseractClient)(nil)

func (c *TesseractClient) Recognize(ctx context.Context, image []byte) (Result, error) {
	start := time.Now()
	log := common.LoggerFrom(ctx, c.logger)
	if len(image) == 0 {
		return Result{}, common.InvalidInputf("image is empty")
	}

	// tesseract stdin stdout -l <lang>
	args := []string{"stdin", "stdout", "-l", c.cfg.Lang}
	if c.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(c.cfg.PSM))
	}
	if c.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", c.cfg.TessdataDir)
	}
	out, errb, err := c.runner.Run(ctx, image, c.cfg.Binary, args...)
	if err != nil {
		log.Error("ocr.tesseract.failed", "error", err, "stderr", truncate(string(errb), 512))
		return Result{}, common.Upstreamf(err, "tesseract failed")
	}

	res := Result{Text: Normalize(string(out)), Method: MethodTesseract, Duration: time.Since(start)}
	log.Info("ocr.tesseract.ok", "text_len", len(res.Text), "elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}
