package rewrite

import (
	"strings"

	"github.com/joseph-ayodele/free-ocr/constants"
)

// preamble is shared by every mode; the mode instruction follows it.
const preamble = "Your role is to receive the text extracted by OCR from an image and rewrite it for the requested mode. " +
	"For example, if the text comes from a receipt and the mode is json, produce a JSON object with relevant fields " +
	"such as merchant name, total amount, date and purchased items. " +
	"Always return only the rewritten content, without additional explanations or surrounding formatting."

// BuildInstruction composes the system message for mode.
func BuildInstruction(mode constants.Mode) string {
	return preamble + "\n\nMode instruction: " + mode.Instruction()
}

// BuildInput packages the OCR text and the mode tag as the user message.
func BuildInput(mode constants.Mode, content string) string {
	var b strings.Builder
	b.WriteString("OCR Content: ")
	b.WriteString(content)
	b.WriteString("\nMode: ")
	b.WriteString(string(mode))
	return b.String()
}
