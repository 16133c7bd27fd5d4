package main

import (
	"context"
	"log/slog"
	"testing"
)

func TestSetupLoggerThreshold(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	ctx := context.Background()

	if _, err := setupLogger(false, ""); err != nil {
		t.Fatalf("setupLogger() error = %v", err)
	}
	if slog.Default().Enabled(ctx, slog.LevelInfo) {
		t.Error("INFO enabled without -verbose, want suppressed")
	}
	if !slog.Default().Enabled(ctx, slog.LevelWarn) {
		t.Error("WARN suppressed without -verbose, want enabled")
	}

	if _, err := setupLogger(true, ""); err != nil {
		t.Fatalf("setupLogger(verbose) error = %v", err)
	}
	if !slog.Default().Enabled(ctx, slog.LevelInfo) {
		t.Error("INFO suppressed with -verbose, want enabled")
	}
}
