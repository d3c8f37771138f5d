package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"highlighter/internal/config"
	"highlighter/internal/logging"
	"highlighter/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (*slog.Logger, func() string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Format:           format,
		Level:            level,
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	read := func() string {
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(content)
	}
	return logger, read
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(cfg.LogPath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerRendersComponentAndClip(t *testing.T) {
	logger, read := newFileLogger(t, "console", "info")

	logger.Info("duration probed",
		logging.String(logging.FieldComponent, "clip"),
		logging.String(logging.FieldClipPath, "/footage/match.mp4"),
		logging.Float64("duration_seconds", 30),
	)

	out := read()
	if !strings.Contains(out, "INFO clip: [match.mp4] duration probed") {
		t.Fatalf("unexpected console header: %q", out)
	}
	if !strings.Contains(out, "duration_seconds=30.000") {
		t.Fatalf("expected second precision formatting, got %q", out)
	}
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", out)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logger, read := newFileLogger(t, "console", "debug")
	logger.Debug("debug message")

	if !strings.Contains(read(), ".go:") {
		t.Fatal("expected caller information in debug logs")
	}
}

func TestJSONLoggerUsesCanonicalKeys(t *testing.T) {
	logger, read := newFileLogger(t, "json", "info")
	logger.Info("json message", logging.Error(errors.New("boom")))

	var payload map[string]any
	line := strings.TrimSpace(read())
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, line)
	}
	for _, key := range []string{"ts", "level", "msg", "error"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected key %q in %v", key, payload)
		}
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lower-case level, got %v", payload["level"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", OutputPaths: []string{filepath.Join(t.TempDir(), "x.log")}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestContextFieldsIncludeClipAndCorrelation(t *testing.T) {
	ctx := services.WithClipPath(context.Background(), "/footage/a.mp4")
	ctx = services.WithRequestID(ctx, "req-1")

	fields := logging.ContextFields(ctx)
	got := map[string]string{}
	for _, f := range fields {
		got[f.Key] = f.Value.String()
	}
	if got[logging.FieldClipPath] != "/footage/a.mp4" {
		t.Fatalf("missing clip path: %v", got)
	}
	if got[logging.FieldCorrelationID] != "req-1" {
		t.Fatalf("missing correlation id: %v", got)
	}
	if n := len(logging.ContextFields(context.Background())); n != 0 {
		t.Fatalf("expected no fields for empty context, got %d", n)
	}
}
