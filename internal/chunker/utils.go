package chunker

import (
	"strings"
	"unicode/utf8"
)

// RuneLength counts characters.
func RuneLength(s string) int {
	return utf8.RuneCountInString(s)
}

// splitAfterAny cuts text after every run of runes from set, keeping the
// run attached to the piece it closes. Concatenating the pieces gives text.
func splitAfterAny(text, set string) []string {
	var pieces []string
	start := 0
	inRun := false
	for i, r := range text {
		isSep := strings.ContainsRune(set, r)
		if inRun && !isSep {
			pieces = append(pieces, text[start:i])
			start = i
		}
		inRun = isSep
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}
	return pieces
}

// runes splits text into single-rune pieces.
func runes(text string) []string {
	pieces := make([]string, 0, utf8.RuneCountInString(text))
	for i, r := range text {
		pieces = append(pieces, text[i:i+utf8.RuneLen(r)])
	}
	return pieces
}
