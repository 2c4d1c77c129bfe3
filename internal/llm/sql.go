package llm

import (
	"errors"
	"regexp"
	"strings"
)

var ErrNoSQL = errors.New("no SQL code block in response")

var sqlFence = regexp.MustCompile("(?s)```[ \t]*(?:sqlite|sql|SQL)?[ \t]*\n?(.*?)```")

// ExtractSQL returns the first fenced code block of a model reply.
func ExtractSQL(reply string) (string, error) {
	m := sqlFence.FindStringSubmatch(reply)
	if m == nil {
		return "", ErrNoSQL
	}
	query := strings.TrimSpace(m[1])
	if query == "" {
		return "", ErrNoSQL
	}
	return query, nil
}
