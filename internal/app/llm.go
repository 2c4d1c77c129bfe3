package app

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"docqa/internal/llm"
	"docqa/internal/retrieval"
	"docqa/internal/store"
)

const (
	contextInstruction = "You are a friendly chatbot who always has a positive attitude. " +
		"You are here to help customers with their questions. Please keep your answer brief and relevant. " +
		"If the text is not applicable to the question, reply with 'Not applicable.' " +
		"You need to provide an answer based on the following content:"

	sqlInstruction = "You write SQLite queries from plain questions to help customers. " +
		"Use this database schema:\n\n%s\n\n" +
		"Reply with a single query inside a ```sql code block."

	summaryInstruction = "You turn SQL query results into easily understandable text for customers. " +
		"Do not mention the SQL query, its structure or the database schema. " +
		"Give a clear and concise summary of the results for a non-technical audience.\n\n" +
		"Database schema:\n%s\n\nSQL query: %s\n\nQuery results:\n%s"
)

// contextMessages builds the retrieval prompt. Chunks are added closest
// first until maxChars is reached; the one that crosses it is truncated.
func contextMessages(question string, results []retrieval.Result, maxChars int) []llm.Message {
	var buf strings.Builder
	buf.WriteString(contextInstruction)

	available := maxChars - len(contextInstruction) - len(question)
	for _, r := range results {
		entry := fmt.Sprintf("\n\n[%s %s]\n%s", r.Chunk.Filename, r.Chunk.Source(), r.Chunk.Content)
		if maxChars > 0 && len(entry) > available {
			if available <= 0 {
				break
			}
			entry = truncate(entry, available) + "..."
			available = 0
		} else {
			available -= len(entry)
		}
		buf.WriteString(entry)
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: buf.String()},
		{Role: llm.RoleUser, Content: question},
	}
}

func sqlMessages(question, schema string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(sqlInstruction, schema)},
		{Role: llm.RoleUser, Content: question},
	}
}

func summaryMessages(question, schema, query string, result *store.Result) []llm.Message {
	rows := result.String()
	if rows == "" {
		rows = "(no rows)"
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(summaryInstruction, schema, query, rows)},
		{Role: llm.RoleUser, Content: question},
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
