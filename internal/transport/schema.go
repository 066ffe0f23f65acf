package transport

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/free-ocr/constants"
)

// Schema is a compiled JSON schema for one wire body.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// CompileSchema compiles schemaMap once; name is used as the resource id.
func CompileSchema(name string, schemaMap map[string]any) (*Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// MustCompileSchema is CompileSchema for package-level schemas.
func MustCompileSchema(name string, schemaMap map[string]any) *Schema {
	s, err := CompileSchema(name, schemaMap)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode validates data against the schema and then unmarshals it into out.
func (s *Schema) Decode(data []byte, out any) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("json does not match %s: %w", s.name, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", s.name, err)
	}
	return nil
}

// Wire bodies exchanged by the OCR endpoint and the rewrite proxy.
var (
	// TextResponseSchema is `{text}` answered by both the OCR endpoint and the proxy.
	TextResponseSchema = MustCompileSchema("text_response.json", map[string]any{
		"type":       "object",
		"properties": map[string]any{"text": map[string]any{"type": "string"}},
		"required":   []string{"text"},
	})

	// ImageRequestSchema is `{image_data}` with base64 image bytes.
	ImageRequestSchema = MustCompileSchema("image_request.json", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"image_data": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"image_data"},
	})

	// RewriteRequestSchema is `{mode, content}`. Mode membership is checked by the proxy,
	// so an unknown mode still decodes and gets a dedicated error.
	RewriteRequestSchema = MustCompileSchema("rewrite_request.json", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mode":    map[string]any{"type": "string"},
			"content": map[string]any{"type": "string"},
		},
		"required": []string{"mode", "content"},
	})

	// SelectRequestSchema is `{mode}` restricted to the known modes.
	SelectRequestSchema = MustCompileSchema("select_request.json", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mode": map[string]any{"type": "string", "enum": constants.ModesAsStringSlice()},
		},
		"required": []string{"mode"},
	})
)

// TextResponse is the `{text}` body.
type TextResponse struct {
	Text string `json:"text"`
}

// ErrorResponse is the `{error}` body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ImageRequest is the `{image_data}` body.
type ImageRequest struct {
	ImageData string `json:"image_data"`
}

// RewriteRequest is the `{mode, content}` body.
type RewriteRequest struct {
	Mode    string `json:"mode"`
	Content string `json:"content"`
}

// SelectRequest is the `{mode}` body.
type SelectRequest struct {
	Mode string `json:"mode"`
}
