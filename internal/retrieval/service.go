package retrieval

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/chunker"
	"docqa/internal/document"
	"docqa/internal/embedding"
	"docqa/internal/errs"
	"docqa/internal/index"
	"docqa/internal/logger"
)

// Document is one uploaded file.
type Document struct {
	Data     []byte
	Filename string
}

// Result is a retrieved chunk and its squared L2 distance to the query.
type Result struct {
	Chunk    chunker.Chunk
	Distance float32
}

// ParseFunc decodes a document into pages, echoing its filename.
type ParseFunc func(data []byte, filename string) ([]document.Page, string, error)

// Service turns documents into a searchable Handle and answers queries
// against one.
type Service struct {
	parse     ParseFunc
	segmenter *chunker.Segmenter
	embedder  embedding.Embedder
	newIndex  func() Index
}

type Option func(*Service)

func WithParser(fn ParseFunc) Option {
	return func(s *Service) { s.parse = fn }
}

func WithIndexFactory(fn func() Index) Option {
	return func(s *Service) { s.newIndex = fn }
}

func NewService(segmenter *chunker.Segmenter, embedder embedding.Embedder, opts ...Option) (*Service, error) {
	if segmenter == nil || embedder == nil {
		return nil, errs.Invalid("retrieval service needs a segmenter and an embedder")
	}
	s := &Service{
		parse:     document.Parse,
		segmenter: segmenter,
		embedder:  embedder,
		newIndex:  func() Index { return index.NewFlatL2() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IndexDocuments parses, segments and embeds docs in order and builds a
// fresh index over the resulting corpus. Any failure aborts the whole batch.
func (s *Service) IndexDocuments(ctx context.Context, docs []Document) (*Handle, error) {
	log := logger.FromContext(ctx)

	for i, doc := range docs {
		if strings.TrimSpace(doc.Filename) == "" {
			return nil, errs.Invalid("document %d has no filename", i)
		}
	}

	var corpus []chunker.Chunk
	for _, doc := range docs {
		pages, filename, err := s.parse(doc.Data, doc.Filename)
		if err != nil {
			return nil, fmt.Errorf("index documents: %w", err)
		}
		chunks, err := s.segmenter.Segment(pages, filename)
		if err != nil {
			return nil, fmt.Errorf("index documents: %w", err)
		}
		log.Debug("Document segmented", "filename", filename, "pages", len(pages), "chunks", len(chunks))
		corpus = append(corpus, chunks...)
	}

	var vectors [][]float32
	if len(corpus) > 0 {
		contents := make([]string, len(corpus))
		for i, c := range corpus {
			contents[i] = c.Content
		}
		var err error
		vectors, err = s.embedder.Encode(ctx, contents)
		if err != nil {
			return nil, fmt.Errorf("index documents: embed: %w", err)
		}
		if len(vectors) != len(corpus) {
			return nil, fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
				errs.ErrCorpusIndexMismatch, len(vectors), len(corpus))
		}
	}

	ix := s.newIndex()
	if err := ix.Build(vectors); err != nil {
		return nil, fmt.Errorf("index documents: %w", err)
	}
	log.Info("Index built", "documents", len(docs), "chunks", len(corpus), "dimension", ix.Dimension())
	return &Handle{corpus: corpus, index: ix}, nil
}

// Query embeds text and returns up to topK chunks nearest to it, closest
// first.
func (s *Service) Query(ctx context.Context, h *Handle, text string, topK int) ([]Result, error) {
	if h == nil || h.index == nil {
		return nil, errs.ErrIndexNotReady
	}
	if topK <= 0 {
		return nil, errs.Invalid("query: top k must be positive, got %d", topK)
	}
	if strings.TrimSpace(text) == "" {
		return nil, errs.Invalid("query: text is empty")
	}
	if h.index.Size() != len(h.corpus) {
		return nil, fmt.Errorf("%w: index holds %d vectors, corpus has %d chunks",
			errs.ErrCorpusIndexMismatch, h.index.Size(), len(h.corpus))
	}
	if len(h.corpus) == 0 {
		return []Result{}, nil
	}

	vectors, err := s.embedder.Encode(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("query: embed: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("query: embedder returned %d vectors for 1 text", len(vectors))
	}

	distances, positions, err := h.index.Search(vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	results := make([]Result, len(positions))
	for i, pos := range positions {
		results[i] = Result{Chunk: h.corpus[pos], Distance: distances[i]}
	}
	logger.FromContext(ctx).Debug("Query answered", "top_k", topK, "results", len(results))
	return results, nil
}
