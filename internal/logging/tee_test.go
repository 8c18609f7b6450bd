package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestTeeHandler_DispatchesToAll(t *testing.T) {
	var a, b bytes.Buffer
	tee := NewTeeHandler(
		NewHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(tee)

	logger.Info("mirrored message", "key", "value")

	if !strings.Contains(a.String(), "mirrored message") {
		t.Errorf("first handler missing message: %q", a.String())
	}
	if !strings.Contains(b.String(), "mirrored message") {
		t.Errorf("second handler missing message: %q", b.String())
	}
}

func TestTeeHandler_RespectsPerHandlerLevels(t *testing.T) {
	var verbose, quiet bytes.Buffer
	tee := NewTeeHandler(
		NewHandler(&verbose, &slog.HandlerOptions{Level: slog.LevelDebug}),
		NewHandler(&quiet, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(tee)

	logger.Debug("only for the verbose sink")

	if verbose.Len() == 0 {
		t.Error("debug-level handler should have received the record")
	}
	if quiet.Len() != 0 {
		t.Errorf("error-level handler should have filtered the record, got: %q", quiet.String())
	}
}

func TestTeeHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer
	tee := NewTeeHandler(
		NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}),
		NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)

	ctx := t.Context()
	if !tee.Enabled(ctx, slog.LevelInfo) {
		t.Error("tee should be enabled when any handler is enabled")
	}
	if tee.Enabled(ctx, slog.LevelDebug) {
		t.Error("tee should be disabled when no handler is enabled")
	}
}

func TestTeeHandler_WithAttrs(t *testing.T) {
	var a, b bytes.Buffer
	tee := NewTeeHandler(
		NewHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		NewHandler(&b, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(tee).With("session", "abc123")

	logger.Info("message")

	for name, buf := range map[string]*bytes.Buffer{"first": &a, "second": &b} {
		if !strings.Contains(buf.String(), "session=abc123") {
			t.Errorf("%s handler missing shared attribute: %q", name, buf.String())
		}
	}
}
