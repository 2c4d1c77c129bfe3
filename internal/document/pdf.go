package document

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"docqa/internal/errs"
)

func parsePDF(data []byte, filename string) (pages []Page, err error) {
	if mt := mimetype.Detect(data); !mt.Is("application/pdf") {
		return nil, &errs.ParseError{
			Filename: filename,
			Err:      fmt.Errorf("content is %s, not application/pdf", mt.String()),
		}
	}

	// the pdf package panics on some malformed object graphs
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = &errs.ParseError{Filename: filename, Err: fmt.Errorf("malformed pdf: %v", r)}
		}
	}()

	reader, openErr := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if openErr != nil {
		return nil, &errs.ParseError{Filename: filename, Err: openErr}
	}
	total := reader.NumPage()
	if total == 0 {
		return nil, &errs.ParseError{Filename: filename, Err: errors.New("pdf has no pages")}
	}

	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		raw, textErr := p.GetPlainText(nil)
		if textErr != nil {
			return nil, &errs.ParseError{Filename: filename, Page: i, Err: textErr}
		}
		text := Normalize(raw)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}
