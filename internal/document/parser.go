package document

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"docqa/internal/errs"
)

// Parse decodes a document into normalized, non-empty pages and echoes its
// filename. The format is chosen by extension, falling back to content
// sniffing for unknown extensions.
func Parse(data []byte, filename string) ([]Page, string, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, filename, errs.Invalid("document filename is empty")
	}

	var (
		pages []Page
		err   error
	)
	switch format := Detect(data, filename); format {
	case FormatPDF:
		pages, err = parsePDF(data, filename)
	case FormatMarkdown:
		pages, err = parseMarkdown(data, filename)
	case FormatText:
		pages, err = parseText(data, filename)
	default:
		err = &errs.ParseError{
			Filename: filename,
			Err:      fmt.Errorf("unsupported content type %s", mimetype.Detect(data).String()),
		}
	}
	if err != nil {
		return nil, filename, err
	}
	return pages, filename, nil
}

// Detect picks the decoder for a document.
func Detect(data []byte, filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".md", ".markdown":
		return FormatMarkdown
	case ".txt", ".text":
		return FormatText
	}

	mt := mimetype.Detect(data)
	switch {
	case mt.Is("application/pdf"):
		return FormatPDF
	case mt.Is("text/markdown"):
		return FormatMarkdown
	case mt.Is("text/plain"):
		return FormatText
	default:
		return FormatUnknown
	}
}
