package retrieval

import (
	"slices"
	"sync/atomic"

	"docqa/internal/chunker"
)

// Index is the vector index a Handle searches.
type Index interface {
	Build(vectors [][]float32) error
	Search(query []float32, k int) ([]float32, []int, error)
	Size() int
	Dimension() int
}

// Handle pairs a corpus with the index built from it: position i of the
// index is the embedding of corpus[i]. Handles are immutable once returned.
type Handle struct {
	corpus []chunker.Chunk
	index  Index
}

// Len is the number of chunks in the corpus.
func (h *Handle) Len() int {
	return len(h.corpus)
}

// Chunks returns a copy of the corpus in index order.
func (h *Handle) Chunks() []chunker.Chunk {
	return slices.Clone(h.corpus)
}

// Dimension of the index vectors, 0 for an empty corpus.
func (h *Handle) Dimension() int {
	if h.index == nil {
		return 0
	}
	return h.index.Dimension()
}

// Holder publishes the current Handle. Readers never see a half-built one.
type Holder struct {
	current atomic.Pointer[Handle]
}

func (h *Holder) Load() *Handle {
	return h.current.Load()
}

// Swap installs next and returns the previous handle.
func (h *Holder) Swap(next *Handle) *Handle {
	return h.current.Swap(next)
}
