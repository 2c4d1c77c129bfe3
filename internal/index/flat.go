package index

import (
	"cmp"
	"slices"
	"sync"

	"docqa/internal/errs"
)

// FlatL2 is an exact nearest-neighbour index over squared Euclidean
// distance. Vectors are stored row-major in one matrix; position i is the
// i-th vector of the last Build.
type FlatL2 struct {
	mu     sync.RWMutex
	dim    int
	rows   int
	data   []float32
	loaded bool
}

func NewFlatL2() *FlatL2 {
	return &FlatL2{}
}

// Build replaces the index content. The dimension is fixed by the first
// non-empty build and every later vector must match it. On error the
// previous content is kept.
func (ix *FlatL2) Build(vectors [][]float32) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	dim := ix.dim
	if len(vectors) > 0 {
		if dim == 0 {
			dim = len(vectors[0])
		}
		if dim == 0 {
			return errs.Invalid("build index: vectors are empty")
		}
		for i, v := range vectors {
			if len(v) != dim {
				return errs.Invalid("build index: vector %d has dimension %d, expected %d", i, len(v), dim)
			}
		}
	}

	data := make([]float32, 0, len(vectors)*dim)
	for _, v := range vectors {
		data = append(data, v...)
	}
	ix.dim = dim
	ix.rows = len(vectors)
	ix.data = data
	ix.loaded = true
	return nil
}

// Search returns up to k positions ordered by ascending distance to query,
// ties broken by the lower position.
func (ix *FlatL2) Search(query []float32, k int) ([]float32, []int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.loaded {
		return nil, nil, errs.ErrIndexNotReady
	}
	if k <= 0 {
		return nil, nil, errs.Invalid("search: k must be positive, got %d", k)
	}
	if ix.rows == 0 {
		return []float32{}, []int{}, nil
	}
	if len(query) != ix.dim {
		return nil, nil, errs.Invalid("search: query has dimension %d, index has %d", len(query), ix.dim)
	}

	type hit struct {
		dist float32
		pos  int
	}
	hits := make([]hit, ix.rows)
	for row := range ix.rows {
		hits[row] = hit{dist: squaredL2(query, ix.data[row*ix.dim:(row+1)*ix.dim]), pos: row}
	}
	slices.SortFunc(hits, func(a, b hit) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.pos, b.pos)
	})

	k = min(k, ix.rows)
	distances := make([]float32, k)
	positions := make([]int, k)
	for i, h := range hits[:k] {
		distances[i] = h.dist
		positions[i] = h.pos
	}
	return distances, positions, nil
}

func (ix *FlatL2) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.rows
}

// Dimension is 0 until the first non-empty build.
func (ix *FlatL2) Dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dim
}

// Vector returns a copy of the vector at position i.
func (ix *FlatL2) Vector(i int) ([]float32, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if i < 0 || i >= ix.rows {
		return nil, false
	}
	return slices.Clone(ix.data[i*ix.dim : (i+1)*ix.dim]), true
}

func squaredL2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(sum)
}
