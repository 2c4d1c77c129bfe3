package chunker

import (
	"strings"

	"docqa/internal/document"
	"docqa/internal/errs"
)

// separator is one level of the split hierarchy. split must return pieces
// whose concatenation is the input, separators attached to the piece they end.
type separator struct {
	name    string
	present func(string) bool
	split   func(string) []string
}

func literal(sep string) separator {
	return separator{
		name:    sep,
		present: func(s string) bool { return strings.Contains(s, sep) },
		split:   func(s string) []string { return strings.SplitAfter(s, sep) },
	}
}

func anyOf(set string) separator {
	return separator{
		name:    set,
		present: func(s string) bool { return strings.ContainsAny(s, set) },
		split:   func(s string) []string { return splitAfterAny(s, set) },
	}
}

// levels runs from paragraphs down to single characters.
var levels = []separator{
	literal("\n\n"),
	literal("\n"),
	anyOf(".!?"),
	literal(","),
	literal(" "),
	{name: "", present: func(string) bool { return true }, split: runes},
}

// Segmenter splits page text into bounded chunks, preferring the coarsest
// boundary that fits: paragraph, line, sentence, clause, word, character.
type Segmenter struct {
	config Config
	length LengthFunc
}

func New(config Config) (*Segmenter, error) {
	if config.MaxChunkSize <= 0 {
		return nil, errs.Invalid("chunk size must be positive, got %d", config.MaxChunkSize)
	}
	if config.Overlap < 0 || config.Overlap >= config.MaxChunkSize {
		return nil, errs.Invalid("chunk overlap must be in [0, %d), got %d", config.MaxChunkSize, config.Overlap)
	}
	length := config.Length
	if length == nil {
		length = RuneLength
	}
	return &Segmenter{config: config, length: length}, nil
}

// Segment splits every page and labels the chunks with their page, their
// position within the page and filename. Pages with no text yield nothing.
func (s *Segmenter) Segment(pages []document.Page, filename string) ([]Chunk, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, errs.Invalid("segment: filename is empty")
	}
	var chunks []Chunk
	for _, page := range pages {
		if page.Number < 1 {
			return nil, errs.Invalid("segment %s: page number %d is not positive", filename, page.Number)
		}
		for seq, content := range s.Split(page.Text) {
			chunks = append(chunks, Chunk{
				Content:  content,
				Page:     page.Number,
				Sequence: seq,
				Filename: filename,
			})
		}
	}
	return chunks, nil
}

// Split breaks text into trimmed, non-empty pieces no longer than the
// configured size.
func (s *Segmenter) Split(text string) []string {
	return s.split(text, 0)
}

func (s *Segmenter) split(text string, level int) []string {
	for level < len(levels)-1 && !levels[level].present(text) {
		level++
	}

	var (
		out     []string
		pending []string
	)
	for _, piece := range levels[level].split(text) {
		if piece == "" {
			continue
		}
		if s.length(piece) > s.config.MaxChunkSize && level < len(levels)-1 {
			out = append(out, s.merge(pending)...)
			pending = nil
			out = append(out, s.split(piece, level+1)...)
			continue
		}
		pending = append(pending, piece)
	}
	return append(out, s.merge(pending)...)
}

// merge packs consecutive pieces into windows of at most MaxChunkSize,
// carrying up to Overlap of the previous window's tail into the next.
func (s *Segmenter) merge(pieces []string) []string {
	var (
		out     []string
		window  []string
		lengths []int
		total   int
	)
	for _, piece := range pieces {
		n := s.length(piece)
		if len(window) > 0 && total+n > s.config.MaxChunkSize {
			out = appendTrimmed(out, strings.Join(window, ""))
			for len(window) > 0 && (total > s.config.Overlap || total+n > s.config.MaxChunkSize) {
				total -= lengths[0]
				window, lengths = window[1:], lengths[1:]
			}
		}
		window = append(window, piece)
		lengths = append(lengths, n)
		total += n
	}
	if len(window) > 0 {
		out = appendTrimmed(out, strings.Join(window, ""))
	}
	return out
}

func appendTrimmed(out []string, chunk string) []string {
	if chunk = strings.TrimSpace(chunk); chunk != "" {
		out = append(out, chunk)
	}
	return out
}
