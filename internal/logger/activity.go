package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

const activityTimeFormat = "2006-01-02 15:04:05"

// Activity records chat turns as "timestamp - kind: message" lines.
type Activity struct {
	mu     sync.Mutex
	l      *charmlog.Logger
	closer io.Closer
}

// NewActivity writes to w. A nil writer discards everything.
func NewActivity(w io.Writer) *Activity {
	if w == nil {
		w = io.Discard
	}
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      activityTimeFormat,
	})
	return &Activity{l: l}
}

// OpenActivity appends to the file at path, creating its directory.
func OpenActivity(path string) (*Activity, error) {
	if path == "" {
		return NewActivity(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create activity log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open activity log: %w", err)
	}
	a := NewActivity(f)
	a.closer = f
	return a, nil
}

// Log is a no-op on a nil Activity.
func (a *Activity) Log(kind, message string) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.l.Print("- " + kind + ": " + message)
}

func (a *Activity) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
