package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/embedding"
	"docqa/internal/llm"
	"docqa/internal/logger"
	"docqa/internal/retrieval"
	"docqa/internal/store"
)

// SQLRunner executes a generated statement against the customer database.
type SQLRunner interface {
	Execute(ctx context.Context, query string) (*store.Result, error)
}

type App struct {
	cfg      *config.Config
	service  *retrieval.Service
	handle   retrieval.Holder
	llm      llm.Generator
	db       SQLRunner
	activity *logger.Activity
	closers  []io.Closer

	transcript []llm.Message
	in         io.Reader
	out        io.Writer
}

type Option func(*App)

func WithGenerator(g llm.Generator) Option {
	return func(a *App) { a.llm = g }
}

func WithSQLRunner(r SQLRunner) Option {
	return func(a *App) { a.db = r }
}

func WithActivity(act *logger.Activity) Option {
	return func(a *App) { a.activity = act }
}

func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.in = in
		a.out = out
	}
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	app := &App{cfg: cfg, in: os.Stdin, out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}

	length, err := chunker.NewLengthFunc(cfg.ChunkLengthUnit, cfg.TokenEncoding)
	if err != nil {
		return nil, err
	}
	segmenter, err := chunker.New(chunker.Config{
		MaxChunkSize: cfg.ChunkSize,
		Overlap:      cfg.ChunkOverlap,
		Length:       length,
	})
	if err != nil {
		return nil, err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	app.service, err = retrieval.NewService(segmenter, embedder)
	if err != nil {
		return nil, err
	}

	if app.llm == nil {
		app.llm = llm.NewClient(llm.Config{
			URL:         cfg.LlmMain.URL,
			Model:       cfg.LlmMain.Model,
			Key:         cfg.LlmMain.Key,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Retries:     cfg.LlmRetries,
		})
	}
	return app, nil
}

func newEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	opts := []embedding.Option{
		embedding.WithConcurrency(cfg.EmbedConcurrency),
		embedding.WithCache(cfg.EmbedCacheSize),
	}
	switch cfg.Embedder {
	case "ollama":
		return embedding.NewOllama(cfg.OllamaEmbedModel, cfg.OllamaURL, opts...)
	case "openai":
		return embedding.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIEmbedModel, opts...)
	case "hashing", "":
		return embedding.NewHashing(cfg.HashingDim)
	default:
		return nil, fmt.Errorf("unknown embedder %q", cfg.Embedder)
	}
}

// Init opens the database and activity log and indexes the configured
// documents.
func (a *App) Init(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if a.cfg.Embedder == "ollama" && a.cfg.OllamaPull {
		if err := ensureOllamaModels(ctx, a.cfg.OllamaURL, a.cfg.OllamaEmbedModel); err != nil {
			return fmt.Errorf("ollama model check failed: %w", err)
		}
	}

	if a.db == nil {
		db, err := store.Open(ctx, a.cfg.DBFile)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db)
		if a.cfg.DBSeed {
			if err := db.Seed(ctx); err != nil {
				return err
			}
		}
		a.db = db
		log.Info("Database ready", "path", a.cfg.DBFile, "seeded", a.cfg.DBSeed)
	}

	if a.activity == nil {
		act, err := logger.OpenActivity(a.cfg.ActivityLog)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, act)
		a.activity = act
	}

	if len(a.cfg.Docs) > 0 {
		if _, err := a.LoadDocuments(ctx, a.cfg.Docs); err != nil {
			return fmt.Errorf("failed to index documents: %w", err)
		}
	}
	return nil
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
