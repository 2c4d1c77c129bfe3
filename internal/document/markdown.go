package document

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"docqa/internal/errs"
)

// parseMarkdown flattens a markdown document into a single page. Headings,
// paragraphs, list items and code blocks each become their own paragraph.
func parseMarkdown(data []byte, filename string) ([]Page, error) {
	if !utf8.Valid(data) {
		return nil, &errs.ParseError{Filename: filename, Err: errInvalidUTF8}
	}
	return Pages(markdownText(data)), nil
}

func markdownText(source []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var (
		blocks  []string
		current strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			blocks = append(blocks, s)
		}
		current.Reset()
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				current.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					current.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				current.Write(node.Value)
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				flush()
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					current.Write(seg.Value(source))
				}
			} else {
				flush()
			}
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			flush()
		}
		return ast.WalkContinue, nil
	})
	flush()

	return strings.Join(blocks, "\n\n")
}
