package chunker

import "fmt"

// Chunk is a contiguous piece of one page's text.
type Chunk struct {
	Content  string
	Page     int // 1-based page of the source document
	Sequence int // 0-based position within the page
	Filename string
}

// Source renders the chunk's page and sequence as "page-seq".
func (c Chunk) Source() string {
	return fmt.Sprintf("%d-%d", c.Page, c.Sequence)
}

// LengthFunc measures text against the size bound.
type LengthFunc func(string) int

// Config holds the segmentation bounds.
type Config struct {
	MaxChunkSize int        // upper bound on a chunk's length
	Overlap      int        // trailing context repeated at the start of the next chunk
	Length       LengthFunc // nil counts runes
}
