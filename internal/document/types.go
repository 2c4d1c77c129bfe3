package document

// Page is the normalized text of one source page.
type Page struct {
	Number int // 1-based
	Text   string
}

// Format identifies how a document's bytes are decoded.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatUnknown  Format = "unknown"
)

// Pages numbers texts 1..n in order, keeping empty entries out.
func Pages(texts ...string) []Page {
	pages := make([]Page, 0, len(texts))
	for i, t := range texts {
		t = Normalize(t)
		if t == "" {
			continue
		}
		pages = append(pages, Page{Number: i + 1, Text: t})
	}
	return pages
}
