package app

import (
	"context"

	"docqa/internal/logger"
)

// LoadDocuments indexes the files at paths and, on success, replaces the
// index queries run against. A failed load leaves the current index in place.
func (a *App) LoadDocuments(ctx context.Context, paths []string) (int, error) {
	log := logger.FromContext(ctx)

	docs, err := readDocuments(paths)
	if err != nil {
		return 0, err
	}
	h, err := a.service.IndexDocuments(ctx, docs)
	if err != nil {
		return 0, err
	}
	if prev := a.handle.Swap(h); prev != nil {
		log.Debug("Replaced index", "previous_chunks", prev.Len())
	}
	log.Info("Documents indexed", "files", len(docs), "chunks", h.Len())
	return h.Len(), nil
}
