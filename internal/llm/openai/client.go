package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/llm"
)

var _ llm.Generator = (*Client)(nil)

// Generate implements llm.Generator using chat/completions with one system and one user message.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	start := time.Now()
	log := common.LoggerFrom(ctx, c.logger)

	log.Info("llm.generate.start",
		"model", c.cfg.Model,
		"instruction_len", len(req.Instruction),
		"input_len", len(req.Input),
	)

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Instruction),
			openai.UserMessage(req.Input),
		},
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = openai.Float(float64(c.cfg.Temperature))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Error("llm.generate.http_error",
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		log.Error("llm.generate.no_choices",
			"id", completion.ID,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("no choices in openai response: %w", llm.ErrEmptyOutput)
	}

	content := completion.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		log.Warn("llm.generate.empty_content",
			"id", completion.ID,
			"finish_reason", completion.Choices[0].FinishReason,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", llm.ErrEmptyOutput
	}

	log.Info("llm.generate.ok",
		"id", completion.ID,
		"output_len", len(content),
		"total_tokens", completion.Usage.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
