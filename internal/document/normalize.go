package document

import (
	"regexp"
	"strings"
)

var (
	carriageReturns = regexp.MustCompile(`\r\n?`)
	hyphenatedBreak = regexp.MustCompile(`([\p{L}\p{N}_]+)-\n([\p{L}\p{N}_]+)`)
	paragraphBreak  = regexp.MustCompile(`\s*\n\s*\n\s*`)
)

// Normalize repairs line-break artifacts left by text extraction:
// hyphenated words split across lines are joined, soft wraps become spaces
// and blank-line runs collapse to a single "\n\n" paragraph break.
func Normalize(text string) string {
	text = carriageReturns.ReplaceAllString(text, "\n")
	text = hyphenatedBreak.ReplaceAllString(text, "$1$2")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	paragraphs := paragraphBreak.Split(text, -1)
	for i, p := range paragraphs {
		paragraphs[i] = strings.ReplaceAll(p, "\n", " ")
	}
	return strings.Join(paragraphs, "\n\n")
}
