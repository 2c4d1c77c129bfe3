package document

import (
	"errors"
	"strings"
	"unicode/utf8"

	"docqa/internal/errs"
)

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// parseText treats form feeds as page breaks.
func parseText(data []byte, filename string) ([]Page, error) {
	if !utf8.Valid(data) {
		return nil, &errs.ParseError{Filename: filename, Err: errInvalidUTF8}
	}
	return Pages(strings.Split(string(data), "\f")...), nil
}
