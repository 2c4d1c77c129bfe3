package app

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"docqa/internal/logger"
)

const (
	cmdLoad    = ":load"
	cmdHistory = ":history"
	cmdQuit    = ":quit"
	cmdExit    = ":exit"
)

func (a *App) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("Application started")
	fmt.Fprintln(a.out, "Ask a question, :load <files...> to index documents, :quit to exit.")

	scanner := bufio.NewScanner(a.in)
	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down application")
			return nil
		default:
			fmt.Fprint(a.out, "> ")
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("stdin error: %w", err)
				}
				log.Info("stdin closed")
				return nil
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if quit := a.handleLine(ctx, line); quit {
				return nil
			}
		}
	}
}

// handleLine runs a command or answers a question. It reports whether the
// loop should stop.
func (a *App) handleLine(ctx context.Context, line string) bool {
	log := logger.FromContext(ctx)
	fields := strings.Fields(line)

	switch fields[0] {
	case cmdQuit, cmdExit:
		return true
	case cmdLoad:
		if len(fields) < 2 {
			fmt.Fprintln(a.out, "usage: :load <file or directory>...")
			return false
		}
		n, err := a.LoadDocuments(ctx, fields[1:])
		if err != nil {
			log.Error("Indexing failed", "error", err)
			fmt.Fprintf(a.out, "Indexing failed: %v\n", err)
			return false
		}
		fmt.Fprintf(a.out, "Indexed %d chunks.\n", n)
		return false
	case cmdHistory:
		for _, m := range a.transcript {
			fmt.Fprintf(a.out, "%s: %s\n", m.Role, m.Content)
		}
		return false
	}

	reply, err := a.Ask(ctx, line)
	if err != nil {
		log.Error("Answer failed", "error", err)
		fmt.Fprintf(a.out, "Sorry, something went wrong: %v\n", err)
		return false
	}
	fmt.Fprintln(a.out, reply)
	return false
}
