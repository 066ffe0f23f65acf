package rewrite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/llm"
)

type recordingGenerator struct {
	calls []llm.GenerateRequest
	out   string
	err   error
}

func (g *recordingGenerator) Generate(_ context.Context, req llm.GenerateRequest) (string, error) {
	g.calls = append(g.calls, req)
	return g.out, g.err
}

func TestRewriteCallsGeneratorOnce(t *testing.T) {
	gen := &recordingGenerator{out: "{\n  \"total\": 12\n}"}
	svc := NewService(gen, nil)

	out, err := svc.Rewrite(context.Background(), constants.ModeJSON, "Total: 12")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"total\": 12\n}", out)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, BuildInstruction(constants.ModeJSON), gen.calls[0].Instruction)
	assert.Contains(t, gen.calls[0].Instruction, constants.ModeJSON.Instruction())
	assert.Equal(t, "OCR Content: Total: 12\nMode: json", gen.calls[0].Input)
}

// An unknown mode is a client error and the generator is never reached.
func TestRewriteInvalidMode(t *testing.T) {
	gen := &recordingGenerator{out: "unused"}
	svc := NewService(gen, nil)

	_, err := svc.Rewrite(context.Background(), constants.Mode("yaml"), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Contains(t, common.PublicMessage(err), "yaml")
	assert.Empty(t, gen.calls)
}

func TestRewritePassthrough(t *testing.T) {
	gen := &recordingGenerator{}
	svc := NewService(gen, nil)

	out, err := svc.Rewrite(context.Background(), constants.ModeMarkdown, "# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
	assert.Empty(t, gen.calls)
}

func TestRewriteGeneratorFailure(t *testing.T) {
	gen := &recordingGenerator{err: llm.ErrEmptyOutput}
	svc := NewService(gen, nil)

	_, err := svc.Rewrite(context.Background(), constants.ModeZod, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.ErrorIs(t, err, llm.ErrEmptyOutput)
	assert.Len(t, gen.calls, 1)
}

func TestRewriteWithGeneratorFunc(t *testing.T) {
	svc := NewService(llm.GeneratorFunc(func(_ context.Context, req llm.GenerateRequest) (string, error) {
		if req.Input == "" {
			return "", errors.New("empty")
		}
		return "class Receipt(BaseModel): ...", nil
	}), nil)

	out, err := svc.Rewrite(context.Background(), constants.ModePydantic, "Total: 12")
	require.NoError(t, err)
	assert.Equal(t, "class Receipt(BaseModel): ...", out)
}

func TestFromConfig(t *testing.T) {
	r := FromConfig(&common.Config{Rewrite: common.RewriteConfig{ProxyURL: "http://proxy.test"}}, nil)
	assert.IsType(t, &Client{}, r)

	r = FromConfig(&common.Config{LLM: common.LLMConfig{APIKey: "sk-test"}}, nil)
	assert.IsType(t, &Service{}, r)
}
