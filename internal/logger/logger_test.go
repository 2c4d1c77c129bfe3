package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("Should return logger from context when present", func(t *testing.T) {
		expected := NewLogger(TestConfig())
		ctx := ContextWithLogger(context.Background(), expected)

		assert.Equal(t, expected, FromContext(ctx))
	})

	t.Run("Should return default logger when no logger in context", func(t *testing.T) {
		l := FromContext(context.Background())
		require.NotNil(t, l)
	})
}

func TestLogLevels(t *testing.T) {
	t.Run("Should respect level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: WarnLevel, Output: &buf, TimeFormat: "15:04:05"})

		l.Debug("debug message")
		l.Info("info message")
		l.Warn("warn message")
		l.Error("error message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.NotContains(t, out, "info message")
		assert.Contains(t, out, "warn message")
		assert.Contains(t, out, "error message")
	})

	t.Run("Should emit nothing when disabled", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: DisabledLevel, Output: &buf})
		l.Error("error message")
		assert.Empty(t, buf.String())
	})

	t.Run("Should carry With fields", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: InfoLevel, Output: &buf}).With("component", "index")
		l.Info("built")
		assert.Contains(t, buf.String(), "component")
		assert.Contains(t, buf.String(), "index")
	})
}

func TestActivity(t *testing.T) {
	t.Run("Should write kind and message", func(t *testing.T) {
		var buf bytes.Buffer
		a := NewActivity(&buf)
		a.Log("User Message", "what plans do you offer?")
		assert.Contains(t, buf.String(), "User Message: what plans do you offer?")
	})

	t.Run("Should append to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "chatbot_activity.log")
		a, err := OpenActivity(path)
		require.NoError(t, err)
		a.Log("System Response", "hello")
		require.NoError(t, a.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "System Response: hello")
	})
}
