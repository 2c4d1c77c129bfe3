package embedding

import (
	"context"
	"fmt"
)

// Embedder maps texts to fixed-dimension vectors, one per input, in order.
// Identical inputs must map to identical vectors.
type Embedder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

func checkDimensions(vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("embedding 0 is empty")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(v), dim)
		}
	}
	return nil
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
