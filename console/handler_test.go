package console

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type line struct {
	Level slog.Level
	Text  string
}

func captureLogger(level slog.Level) (*slog.Logger, *[]line) {
	var lines []line
	h := newHandler(&slog.HandlerOptions{Level: level}, func(l slog.Level, s string) {
		lines = append(lines, line{Level: l, Text: s})
	})
	return slog.New(h), &lines
}

// TestHandler_FormatsRecords verifies message and attribute formatting,
// including quoting, groups and preformatted attributes.
func TestHandler_FormatsRecords(t *testing.T) {
	logger, lines := captureLogger(slog.LevelDebug)

	logger.With("app", "include").Error("Error loading component",
		"component", "footer",
		"error", errors.New("status 404"),
	)
	logger.WithGroup("req").Warn("slow", slog.Group("timing", "ms", 1200), "path", "a=b")
	logger.Debug("Loaded component", "scripts", 2, "empty", "")

	want := []line{
		{slog.LevelError, `Error loading component app=include component=footer error="status 404"`},
		{slog.LevelWarn, `slow req.timing.ms=1200 req.path="a=b"`},
		{slog.LevelDebug, `Loaded component scripts=2 empty=""`},
	}
	if diff := cmp.Diff(want, *lines); diff != "" {
		t.Errorf("Console lines mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_LevelFilter(t *testing.T) {
	logger, lines := captureLogger(slog.LevelWarn)

	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Warn("shown")

	if len(*lines) != 1 || (*lines)[0].Text != "shown" {
		t.Errorf("Expected only the warning, got %v", *lines)
	}
}

func TestNewHandler_DefaultsToInfo(t *testing.T) {
	h := NewHandler(nil)
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Expected debug to be disabled by default")
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Expected info to be enabled by default")
	}
}
