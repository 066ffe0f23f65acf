package constants

import (
	"fmt"
	"strings"
)

// Mode is one of the fixed output formats for an OCR transcript.
type Mode string

const (
	ModeMarkdown Mode = "markdown"
	ModePlain    Mode = "plain"
	ModeJSON     Mode = "json"
	ModePydantic Mode = "pydantic"
	ModeZod      Mode = "zod"
)

// PrimaryMode is the mode whose output is the OCR text itself.
const PrimaryMode = ModeMarkdown

var allModes = []Mode{
	ModeMarkdown,
	ModeJSON,
	ModePydantic,
	ModeZod,
	ModePlain,
}

// ModeConfig is the static display metadata for a mode.
type ModeConfig struct {
	Label       string
	Description string
}

var modeConfig = map[Mode]ModeConfig{
	ModeMarkdown: {Label: "Markdown", Description: "Original OCR text"},
	ModePlain:    {Label: "Plain Text", Description: "Cleaned text format"},
	ModeJSON:     {Label: "JSON", Description: "Structured JSON format"},
	ModePydantic: {Label: "Pydantic", Description: "Python Pydantic model code"},
	ModeZod:      {Label: "Zod", Description: "TypeScript Zod schema code"},
}

var modeInstructions = map[Mode]string{
	ModeMarkdown: "",
	ModePlain: "Return only the cleaned, plain text from the OCR content without any formatting or additional explanations. " +
		"Remove all markdown syntax. (unless it clearly is part of the original text, like a # in a code snippet)",
	ModeJSON: "Convert the OCR content into a properly formatted JSON object. Infer logical field names and structure. " +
		"Return only the JSON, no explanations.",
	ModePydantic: "Generate a Python Pydantic model class that represents the structure of the OCR content. " +
		"The model should have appropriate field names and types. Return only the valid Python code for the model definition, starting with imports.",
	ModeZod: "Generate a TypeScript Zod schema that validates the structure of the OCR content. " +
		"The schema should have appropriate field names and types. Return only the valid TypeScript code for the schema definition, starting with imports.",
}

// AllModes returns every mode in display order.
func AllModes() []Mode {
	out := make([]Mode, len(allModes))
	copy(out, allModes)
	return out
}

// RewriteModes returns the modes that need a rewrite call, i.e. every mode with a non-empty instruction.
func RewriteModes() []Mode {
	out := make([]Mode, 0, len(allModes))
	for _, m := range allModes {
		if modeInstructions[m] != "" {
			out = append(out, m)
		}
	}
	return out
}

// ModesAsStringSlice is used for schema enums and error messages.
func ModesAsStringSlice() []string {
	result := make([]string, len(allModes))
	for i, m := range allModes {
		result[i] = string(m)
	}
	return result
}

// ParseMode validates a mode tag. Matching is exact after trimming whitespace.
func ParseMode(input string) (Mode, error) {
	m := Mode(strings.TrimSpace(input))
	if _, ok := modeConfig[m]; !ok {
		return "", fmt.Errorf("unknown mode %q (want one of %s)", input, strings.Join(ModesAsStringSlice(), ", "))
	}
	return m, nil
}

func (m Mode) Valid() bool {
	_, ok := modeConfig[m]
	return ok
}

// Instruction returns the static rewrite instruction; empty means passthrough.
func (m Mode) Instruction() string { return modeInstructions[m] }

func (m Mode) Label() string { return modeConfig[m].Label }

func (m Mode) Description() string { return modeConfig[m].Description }

// Passthrough reports whether the mode's output is the OCR text unchanged.
func (m Mode) Passthrough() bool { return m.Valid() && modeInstructions[m] == "" }

func (m Mode) String() string { return string(m) }
