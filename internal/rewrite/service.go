// Package rewrite maps an output mode to its fixed instruction and forwards
// (instruction, content) to a text-generation service.
package rewrite

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/llm"
)

// Rewriter turns OCR text into the output of one mode.
type Rewriter interface {
	Rewrite(ctx context.Context, mode constants.Mode, content string) (string, error)
}

// RewriterFunc adapts a function to Rewriter.
type RewriterFunc func(ctx context.Context, mode constants.Mode, content string) (string, error)

func (f RewriterFunc) Rewrite(ctx context.Context, mode constants.Mode, content string) (string, error) {
	return f(ctx, mode, content)
}

// Service is the stateless mode rewrite proxy.
type Service struct {
	gen    llm.Generator
	logger *slog.Logger
}

func NewService(gen llm.Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, logger: logger}
}

var _ Rewriter = (*Service)(nil)

// Rewrite validates mode, then issues exactly one generator call and returns its
// output unmodified. A passthrough mode returns content as is without a call.
func (s *Service) Rewrite(ctx context.Context, mode constants.Mode, content string) (string, error) {
	start := time.Now()
	log := common.LoggerFrom(ctx, s.logger).With("mode", string(mode))

	if !mode.Valid() {
		log.Warn("rewrite.invalid_mode")
		return "", common.InvalidInputf("invalid mode %q: must be one of %s", string(mode), strings.Join(constants.ModesAsStringSlice(), ", "))
	}
	if mode.Passthrough() {
		log.Debug("rewrite.passthrough", "content_len", len(content))
		return content, nil
	}

	out, err := s.gen.Generate(ctx, llm.GenerateRequest{
		Instruction: BuildInstruction(mode),
		Input:       BuildInput(mode, content),
	})
	if err != nil {
		log.Error("rewrite.generate_failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", common.Upstreamf(err, "text generation failed for mode %s", mode)
	}

	log.Info("rewrite.ok", "content_len", len(content), "output_len", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}
