package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/transport"
)

// RemoteConfig configures the remote OCR endpoint client.
type RemoteConfig struct {
	Endpoint string
	// Timeout bounds the whole HTTP exchange; 0 means no client-side timeout.
	Timeout time.Duration
	// SlowNoticeAfter logs a "this may take a while" notice; it never cancels the call.
	SlowNoticeAfter time.Duration
	HTTPClient      *http.Client
}

// RemoteClient posts `{image_data}` to the OCR endpoint and expects `{text}` back.
type RemoteClient struct {
	cfg    RemoteConfig
	http   *http.Client
	logger *slog.Logger
}

func NewRemoteClient(cfg RemoteConfig, logger *slog.Logger) *RemoteClient {
	if logger == nil {
		logger = slog.Default()
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &RemoteClient{cfg: cfg, http: hc, logger: logger}
}

var _ Recognizer = (*RemoteClient)(nil)

func (c *RemoteClient) Recognize(ctx context.Context, image []byte) (Result, error) {
	start := time.Now()
	log := common.LoggerFrom(ctx, c.logger)

	if len(image) == 0 {
		return Result{}, common.InvalidInputf("image is empty")
	}

	log.Info("ocr.remote.start", "endpoint", c.cfg.Endpoint, "image_bytes", len(image))
	if c.cfg.SlowNoticeAfter > 0 {
		timer := time.AfterFunc(c.cfg.SlowNoticeAfter, func() {
			log.Warn("ocr.remote.slow", "notice", "this may take a while", "after_ms", c.cfg.SlowNoticeAfter.Milliseconds())
		})
		defer timer.Stop()
	}

	body := transport.ImageRequest{ImageData: base64.StdEncoding.EncodeToString(image)}
	raw, status, err := transport.SendJSON(ctx, c.http, c.cfg.Endpoint, body, nil, log)
	if err != nil {
		log.Error("ocr.remote.http_error", "status", status, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		var se *transport.StatusError
		if errors.As(err, &se) {
			return Result{}, common.Upstreamf(err, "ocr endpoint answered %d", se.StatusCode)
		}
		return Result{}, common.Upstreamf(err, "ocr endpoint unreachable")
	}

	var out transport.TextResponse
	if err := transport.TextResponseSchema.Decode(raw, &out); err != nil {
		log.Error("ocr.remote.decode_error", "error", err, "raw_bytes", len(raw))
		return Result{}, common.Upstreamf(err, "ocr endpoint returned a malformed response")
	}

	res := Result{Text: out.Text, Method: MethodRemote, Duration: time.Since(start)}
	log.Info("ocr.remote.ok", "text_len", len(res.Text), "elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}

// String is used in startup logs.
func (c *RemoteClient) String() string {
	return fmt.Sprintf("remote(%s)", c.cfg.Endpoint)
}
