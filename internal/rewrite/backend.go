package rewrite

import (
	"log/slog"
	"net/http"

	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/llm/openai"
)

// NewOpenAIService is the in-process proxy backed by the OpenAI chat completions API.
func NewOpenAIService(cfg common.LLMConfig, logger *slog.Logger) *Service {
	gen := openai.NewClient(openai.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	}, logger)
	return NewService(gen, logger)
}

// FromConfig returns a Client when REWRITE_PROXY_URL is set, otherwise NewOpenAIService.
func FromConfig(cfg *common.Config, logger *slog.Logger) Rewriter {
	if cfg.Rewrite.ProxyURL != "" {
		return NewClient(cfg.Rewrite.ProxyURL, &http.Client{Timeout: cfg.LLM.Timeout}, logger)
	}
	return NewOpenAIService(cfg.LLM, logger)
}
