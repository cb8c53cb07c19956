package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type captureWriter struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *captureWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func TestConsoleHandlerRendersComponentAndAttrs(t *testing.T) {
	writer := &captureWriter{}
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)
	logger := slog.New(newConsoleHandler(writer, lvl))

	component := NewComponentLogger(logger, "timeline")
	component.Info("records extracted", Args(Int(FieldCount, 12), String(FieldFile, "history.json"))...)

	out := writer.String()
	if !strings.Contains(out, "INFO timeline: records extracted") {
		t.Fatalf("missing component prefix: %q", out)
	}
	if !strings.Contains(out, "count=12") || !strings.Contains(out, "file=history.json") {
		t.Fatalf("missing attrs: %q", out)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	writer := &captureWriter{}
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(writer, lvl))

	logger.Warn("record dropped", Args(String("reason", "invalid coordinate pair"))...)

	if !strings.Contains(writer.String(), `reason="invalid coordinate pair"`) {
		t.Fatalf("expected quoted value, got %q", writer.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	writer := &captureWriter{}
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(writer, lvl))

	logger.Info("should be dropped")
	logger.Warn("should appear")

	out := writer.String()
	if strings.Contains(out, "should be dropped") {
		t.Fatalf("info line leaked past warn level: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled at any level")
	}
	// Must not panic.
	logger.Error("ignored", Args(Time("at", time.Now()), Error(nil))...)
}
