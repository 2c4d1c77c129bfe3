package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/llm"
	"docqa/internal/logger"
	"docqa/internal/retrieval"
	"docqa/internal/store"
)

type fakeGenerator struct {
	replies []string
	calls   [][]llm.Message
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, messages []llm.Message) (string, error) {
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "ok", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

type fakeRunner struct {
	queries []string
	result  *store.Result
	err     error
}

func (f *fakeRunner) Execute(_ context.Context, query string) (*store.Result, error) {
	f.queries = append(f.queries, query)
	return f.result, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		ChunkSize:        40,
		ChunkLengthUnit:  "chars",
		Embedder:         "hashing",
		HashingDim:       1024,
		EmbedConcurrency: 1,
		TopK:             1,
		SQLTrigger:       "user id",
		MaxPromptChars:   6000,
	}
}

func testContext() context.Context {
	return logger.ContextWithLogger(context.Background(), logger.NewLogger(logger.TestConfig()))
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type harness struct {
	app      *App
	gen      *fakeGenerator
	db       *fakeRunner
	activity *bytes.Buffer
	out      *bytes.Buffer
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	h := &harness{
		gen:      &fakeGenerator{},
		db:       &fakeRunner{result: &store.Result{}},
		activity: &bytes.Buffer{},
		out:      &bytes.Buffer{},
	}
	a, err := New(testConfig(),
		WithGenerator(h.gen),
		WithSQLRunner(h.db),
		WithActivity(logger.NewActivity(h.activity)),
		WithIO(strings.NewReader(input), h.out),
	)
	require.NoError(t, err)
	h.app = a
	return h
}

const plans = "Fiber plans start at 50 Mbps. Installation is free this month."

func TestApp_Ask(t *testing.T) {
	ctx := testContext()

	t.Run("Should answer from the closest chunk", func(t *testing.T) {
		h := newHarness(t, "")
		path := writeDoc(t, t.TempDir(), "plans.txt", plans)
		n, err := h.app.LoadDocuments(ctx, []string{path})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		h.gen.replies = []string{"Installation is free right now."}
		reply, err := h.app.Ask(ctx, "What is the installation cost?")
		require.NoError(t, err)
		assert.Equal(t, "Installation is free right now.", reply)

		require.Len(t, h.gen.calls, 1)
		system := h.gen.calls[0][0]
		assert.Equal(t, llm.RoleSystem, system.Role)
		assert.Contains(t, system.Content, "Installation is free this month.")
		assert.NotContains(t, system.Content, "Fiber plans")
		assert.Equal(t, "What is the installation cost?", h.gen.calls[0][1].Content)

		assert.Contains(t, h.activity.String(), "User Message: What is the installation cost?")
		assert.Contains(t, h.activity.String(), "System Response: Installation is free right now.")
		assert.Equal(t, []llm.Message{
			{Role: llm.RoleUser, Content: "What is the installation cost?"},
			{Role: llm.RoleAssistant, Content: "Installation is free right now."},
		}, h.app.Transcript())
	})

	t.Run("Should say when no documents are loaded", func(t *testing.T) {
		h := newHarness(t, "")
		reply, err := h.app.Ask(ctx, "What plans exist?")
		require.NoError(t, err)
		assert.Equal(t, noDocumentsReply, reply)
		assert.Empty(t, h.gen.calls)
	})

	t.Run("Should route user id questions to the database", func(t *testing.T) {
		h := newHarness(t, "")
		h.gen.replies = []string{
			"```sql\nSELECT name FROM users WHERE user_id = 1;\n```",
			"The customer is John Doe.",
		}
		h.db.result = &store.Result{Columns: []string{"name"}, Rows: [][]any{{"John Doe"}}}

		reply, err := h.app.Ask(ctx, "Who has User ID 1?")
		require.NoError(t, err)
		assert.Equal(t, "The customer is John Doe.", reply)
		assert.Equal(t, []string{"SELECT name FROM users WHERE user_id = 1;"}, h.db.queries)

		require.Len(t, h.gen.calls, 2)
		assert.Contains(t, h.gen.calls[0][0].Content, "CREATE TABLE IF NOT EXISTS users")
		assert.Contains(t, h.gen.calls[1][0].Content, "name=John Doe")
		assert.Contains(t, h.activity.String(), "Database Access: SELECT name FROM users WHERE user_id = 1;")
	})

	t.Run("Should report no results when the model gives no SQL", func(t *testing.T) {
		h := newHarness(t, "")
		h.gen.replies = []string{"I cannot help with that."}

		reply, err := h.app.Ask(ctx, "user id 7 details")
		require.NoError(t, err)
		assert.Equal(t, noResultsReply, reply)
		assert.Empty(t, h.db.queries)
	})

	t.Run("Should report no results when the query fails", func(t *testing.T) {
		h := newHarness(t, "")
		h.gen.replies = []string{"```\nSELECT nope;\n```"}
		h.db.err = errors.New("no such column")

		reply, err := h.app.Ask(ctx, "balance for user id 2")
		require.NoError(t, err)
		assert.Equal(t, noResultsReply, reply)
		assert.Len(t, h.gen.calls, 1)
	})

	t.Run("Should surface generation errors", func(t *testing.T) {
		h := newHarness(t, "")
		h.gen.err = llm.ErrEmptyResponse
		_, err := h.app.Ask(ctx, "user id 3")
		assert.ErrorIs(t, err, llm.ErrEmptyResponse)
	})
}

func TestApp_LoadDocuments(t *testing.T) {
	ctx := testContext()

	t.Run("Should keep the previous index when a load fails", func(t *testing.T) {
		h := newHarness(t, "")
		dir := t.TempDir()
		good := writeDoc(t, dir, "plans.txt", plans)
		bad := writeDoc(t, dir, "scan.pdf", "not really a pdf")

		_, err := h.app.LoadDocuments(ctx, []string{good})
		require.NoError(t, err)
		before := h.app.Current()

		_, err = h.app.LoadDocuments(ctx, []string{good, bad})
		require.Error(t, err)
		assert.Same(t, before, h.app.Current())
	})

	t.Run("Should replace the index on success", func(t *testing.T) {
		h := newHarness(t, "")
		dir := t.TempDir()
		_, err := h.app.LoadDocuments(ctx, []string{writeDoc(t, dir, "a.txt", plans)})
		require.NoError(t, err)
		first := h.app.Current()

		_, err = h.app.LoadDocuments(ctx, []string{writeDoc(t, dir, "b.txt", "Support is open daily.")})
		require.NoError(t, err)
		assert.NotSame(t, first, h.app.Current())
		assert.Equal(t, 1, h.app.Current().Len())
		assert.Equal(t, 2, first.Len())
	})

	t.Run("Should walk directories in lexical order", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, "b.md", "# Beta")
		writeDoc(t, dir, "a.txt", "Alpha")
		writeDoc(t, dir, "image.png", "skip me")

		docs, err := readDocuments([]string{dir})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "a.txt", docs[0].Filename)
		assert.Equal(t, "b.md", docs[1].Filename)
	})

	t.Run("Should fail on a missing path", func(t *testing.T) {
		_, err := readDocuments([]string{filepath.Join(t.TempDir(), "missing.pdf")})
		assert.Error(t, err)
	})
}

func TestApp_Run(t *testing.T) {
	ctx := testContext()

	t.Run("Should process commands and questions until quit", func(t *testing.T) {
		path := writeDoc(t, t.TempDir(), "plans.txt", plans)
		input := ":load " + path + "\n\nWhat is the installation cost?\n:history\n:quit\nnever asked\n"
		h := newHarness(t, input)
		h.gen.replies = []string{"It is free."}

		require.NoError(t, h.app.Run(ctx))

		out := h.out.String()
		assert.Contains(t, out, "Indexed 2 chunks.")
		assert.Contains(t, out, "It is free.")
		assert.Contains(t, out, "user: What is the installation cost?")
		assert.Contains(t, out, "assistant: It is free.")
		assert.Len(t, h.gen.calls, 1)
	})

	t.Run("Should report a failed load and continue", func(t *testing.T) {
		input := ":load /does/not/exist.pdf\n:load\n"
		h := newHarness(t, input)
		require.NoError(t, h.app.Run(ctx))
		assert.Contains(t, h.out.String(), "Indexing failed")
		assert.Contains(t, h.out.String(), "usage: :load")
	})

	t.Run("Should stop when the context is cancelled", func(t *testing.T) {
		h := newHarness(t, "question\n")
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		require.NoError(t, h.app.Run(cctx))
		assert.Empty(t, h.gen.calls)
	})
}

func TestContextMessages(t *testing.T) {
	results := []retrieval.Result{
		{Chunk: chunker.Chunk{Content: strings.Repeat("a", 50), Page: 1, Sequence: 0, Filename: "x.pdf"}},
		{Chunk: chunker.Chunk{Content: strings.Repeat("b", 50), Page: 2, Sequence: 0, Filename: "x.pdf"}},
	}

	t.Run("Should include every chunk within budget", func(t *testing.T) {
		msgs := contextMessages("q", results, 0)
		assert.Contains(t, msgs[0].Content, "[x.pdf 1-0]")
		assert.Contains(t, msgs[0].Content, "[x.pdf 2-0]")
	})

	t.Run("Should truncate at the prompt budget", func(t *testing.T) {
		limit := len(contextInstruction) + 1 + 40
		msgs := contextMessages("q", results, limit)
		assert.Contains(t, msgs[0].Content, "[x.pdf 1-0]")
		assert.NotContains(t, msgs[0].Content, "[x.pdf 2-0]")
		assert.True(t, strings.HasSuffix(msgs[0].Content, "..."))
	})
}

func TestEnsureOllamaModels(t *testing.T) {
	ctx := testContext()

	t.Run("Should pull only missing models", func(t *testing.T) {
		var pulled atomic.Value
		mux := http.NewServeMux()
		mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"models":[{"name":"nomic-embed-text:latest"}]}`))
		})
		mux.HandleFunc("/api/pull", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			pulled.Store(body["name"])
			w.WriteHeader(http.StatusOK)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		require.NoError(t, ensureOllamaModels(ctx, srv.URL, "nomic-embed-text", "all-minilm"))
		assert.Equal(t, "all-minilm", pulled.Load())
	})

	t.Run("Should fail when the server is down", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		assert.Error(t, ensureOllamaModels(ctx, url, "nomic-embed-text"))
	})
}
