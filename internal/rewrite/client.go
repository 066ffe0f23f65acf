package rewrite

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/transport"
)

// ProxyPath is where the rewrite proxy is mounted.
const ProxyPath = "/api/change_response_mode"

// Client calls a remote rewrite proxy over HTTP.
type Client struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

// NewClient accepts either the proxy base URL or the full endpoint URL.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	url := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(url, ProxyPath) {
		url += ProxyPath
	}
	return &Client{url: url, http: httpClient, logger: logger}
}

var _ Rewriter = (*Client)(nil)

func (c *Client) Rewrite(ctx context.Context, mode constants.Mode, content string) (string, error) {
	log := common.LoggerFrom(ctx, c.logger).With("mode", string(mode))
	body := transport.RewriteRequest{Mode: string(mode), Content: content}

	raw, status, err := transport.SendJSON(ctx, c.http, c.url, body, nil, log)
	if err != nil {
		var se *transport.StatusError
		if errors.As(err, &se) {
			msg := errorMessage(se.Body)
			if status >= 400 && status < 500 {
				return "", common.InvalidInputf("rewrite proxy rejected request: %s", msg)
			}
			return "", common.Upstreamf(err, "rewrite proxy answered %d: %s", status, msg)
		}
		return "", common.Upstreamf(err, "rewrite proxy unreachable")
	}

	var out transport.TextResponse
	if err := transport.TextResponseSchema.Decode(raw, &out); err != nil {
		return "", common.Upstreamf(err, "rewrite proxy returned a malformed response")
	}
	return out.Text, nil
}

func errorMessage(body []byte) string {
	var e transport.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return truncate(strings.TrimSpace(string(body)), 200)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
