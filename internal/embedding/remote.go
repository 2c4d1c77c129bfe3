package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/philippgille/chromem-go"
	"golang.org/x/sync/errgroup"

	"docqa/internal/errs"
)

// Remote calls a per-text embedding function, a few texts at a time, with an
// optional LRU cache in front of it.
type Remote struct {
	name        string
	embed       chromem.EmbeddingFunc
	concurrency int
	cache       *lru.Cache[string, []float32]
}

type Option func(*Remote) error

// WithConcurrency bounds in-flight embedding calls.
func WithConcurrency(n int) Option {
	return func(r *Remote) error {
		if n <= 0 {
			return errs.Invalid("embedding concurrency must be positive, got %d", n)
		}
		r.concurrency = n
		return nil
	}
}

// WithCache keeps up to size vectors keyed by text. Zero disables caching.
func WithCache(size int) Option {
	return func(r *Remote) error {
		if size <= 0 {
			r.cache = nil
			return nil
		}
		cache, err := lru.New[string, []float32](size)
		if err != nil {
			return fmt.Errorf("embedder %s: init cache: %w", r.name, err)
		}
		r.cache = cache
		return nil
	}
}

func NewRemote(name string, fn chromem.EmbeddingFunc, opts ...Option) (*Remote, error) {
	if fn == nil {
		return nil, errs.Invalid("embedder %s: embedding function is required", name)
	}
	r := &Remote{name: name, embed: fn, concurrency: 1}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewOllama embeds through an Ollama server, baseURL without the /api suffix.
func NewOllama(model, baseURL string, opts ...Option) (*Remote, error) {
	url := strings.TrimSuffix(baseURL, "/") + "/api"
	return NewRemote("ollama/"+model, chromem.NewEmbeddingFuncOllama(model, url), opts...)
}

// NewOpenAI embeds through the OpenAI embeddings API.
func NewOpenAI(apiKey, model string, opts ...Option) (*Remote, error) {
	fn := chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI(model))
	return NewRemote("openai/"+model, fn, opts...)
}

func (r *Remote) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i := range texts {
		g.Go(func() error {
			v, err := r.embedOne(gctx, texts[i])
			if err != nil {
				return fmt.Errorf("embedder %s: text %d: %w", r.name, i, err)
			}
			vectors[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := checkDimensions(vectors); err != nil {
		return nil, fmt.Errorf("embedder %s: %w", r.name, err)
	}
	return vectors, nil
}

func (r *Remote) embedOne(ctx context.Context, text string) ([]float32, error) {
	if r.cache == nil {
		return r.embed(ctx, text)
	}
	key := cacheKey(text)
	if v, ok := r.cache.Get(key); ok {
		return cloneVector(v), nil
	}
	v, err := r.embed(ctx, text)
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, cloneVector(v))
	return v, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
