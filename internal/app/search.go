package app

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/llm"
	"docqa/internal/logger"
	"docqa/internal/retrieval"
	"docqa/internal/store"
)

const (
	noDocumentsReply = "No documents are loaded yet. Use :load <file> to add some."
	noResultsReply   = "No results found."
)

// routesToDatabase reports whether a message asks about customer records.
func (a *App) routesToDatabase(message string) bool {
	return strings.Contains(strings.ToLower(message), strings.ToLower(a.cfg.SQLTrigger))
}

// answerFromDocuments grounds the reply in the top chunks of the current
// index.
func (a *App) answerFromDocuments(ctx context.Context, question string) (string, error) {
	h := a.handle.Load()
	if h == nil {
		return noDocumentsReply, nil
	}
	results, err := a.service.Query(ctx, h, question, a.cfg.TopK)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}
	logger.FromContext(ctx).Debug("Found relevant chunks", "count", len(results))
	return a.llm.Generate(ctx, contextMessages(question, results, a.cfg.MaxPromptChars))
}

// answerFromDatabase asks the model for a query, runs it and has the model
// explain the rows.
func (a *App) answerFromDatabase(ctx context.Context, question string) (string, error) {
	log := logger.FromContext(ctx)
	schema := store.Schema()

	reply, err := a.llm.Generate(ctx, sqlMessages(question, schema))
	if err != nil {
		return "", err
	}
	query, err := llm.ExtractSQL(reply)
	if err != nil {
		log.Warn("Model reply had no SQL", "reply", reply)
		return noResultsReply, nil
	}
	a.activity.Log("Database Access", query)

	result, err := a.db.Execute(ctx, query)
	if err != nil {
		log.Warn("Generated query failed", "query", query, "error", err)
		return noResultsReply, nil
	}
	return a.llm.Generate(ctx, summaryMessages(question, schema, query, result))
}

// Ask answers one user message and records both turns.
func (a *App) Ask(ctx context.Context, message string) (string, error) {
	a.transcript = append(a.transcript, llm.Message{Role: llm.RoleUser, Content: message})
	a.activity.Log("User Message", message)

	var (
		reply string
		err   error
	)
	if a.routesToDatabase(message) {
		reply, err = a.answerFromDatabase(ctx, message)
	} else {
		reply, err = a.answerFromDocuments(ctx, message)
	}
	if err != nil {
		return "", err
	}

	a.activity.Log("System Response", reply)
	a.transcript = append(a.transcript, llm.Message{Role: llm.RoleAssistant, Content: reply})
	return reply, nil
}

// Transcript returns the conversation so far.
func (a *App) Transcript() []llm.Message {
	out := make([]llm.Message, len(a.transcript))
	copy(out, a.transcript)
	return out
}

// Current is the index queries run against, nil before the first load.
func (a *App) Current() *retrieval.Handle {
	return a.handle.Load()
}
