package logging

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelWarn},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: expected %v, got %v", tc.in, tc.want, got)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestSetLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetLevel(slog.LevelWarn)
		SetOutput(os.Stderr)
	})

	SetLevel(slog.LevelWarn)
	Logger().Info("hidden message")
	if buf.Len() != 0 {
		t.Fatalf("expected info suppressed at warn level, got %q", buf.String())
	}

	SetLevel(slog.LevelInfo)
	Logger().Info("visible message", "agent", "echo")
	out := buf.String()
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "agent=echo") {
		t.Fatalf("expected info line with attrs, got %q", out)
	}
}

func TestSetOutputWhileLogging(t *testing.T) {
	t.Cleanup(func() {
		SetOutput(os.Stderr)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			Logger().Debug("background", "i", i)
		}
	}()
	for i := 0; i < 100; i++ {
		SetOutput(io.Discard)
	}
	<-done

	if Logger() == nil {
		t.Fatalf("expected logger after concurrent SetOutput")
	}
}
