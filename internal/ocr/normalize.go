package ocr

import (
	"regexp"
	"strings"
)

var (
	reInlineSpace = regexp.MustCompile(`[ \t]+`)
	reRule        = regexp.MustCompile(`^[_\-]{3,}$`)
)

// Normalize tidies local tesseract output: CRLF becomes LF, runs of spaces and
// tabs collapse to one space, ruler lines (---, ___) are dropped, and at most one
// blank line separates paragraphs. Remote OCR text is never normalized.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	blank := 0
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(reInlineSpace.ReplaceAllString(line, " "))
		if reRule.MatchString(line) {
			line = ""
		}
		if line == "" {
			blank++
			continue
		}
		if b.Len() > 0 {
			if blank > 0 {
				b.WriteString("\n\n")
			} else {
				b.WriteByte('\n')
			}
		}
		blank = 0
		b.WriteString(line)
	}
	return b.String()
}
