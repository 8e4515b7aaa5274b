package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentStore, Output: &buf})
	l.Debug("opened", FieldPath, "/tmp/x.db")

	out := buf.String()
	if !strings.Contains(out, "component=store") {
		t.Fatalf("output %q missing component", out)
	}
	if !strings.Contains(out, "path=/tmp/x.db") {
		t.Fatalf("output %q missing path", out)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn not logged: %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	l := Discard().WithComponent(ComponentHTTP)
	if l.Component() != ComponentHTTP {
		t.Fatalf("Component() = %q, want %q", l.Component(), ComponentHTTP)
	}
	if l.With("k", "v").Component() != ComponentHTTP {
		t.Fatal("With dropped the component")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("ParseLevel(loud) should fail")
	}
}
