package llm

import (
	"context"
	"errors"
)

// ErrEmptyOutput is returned when the model answered without any text.
var ErrEmptyOutput = errors.New("llm returned no text")

// GenerateRequest is one instruction-following call.
type GenerateRequest struct {
	Instruction string // system message
	Input       string // user message
}

// Generator is the text-generation service the rewrite proxy depends on.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req GenerateRequest) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return f(ctx, req)
}
