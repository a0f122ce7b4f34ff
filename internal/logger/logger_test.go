package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in  string
		out slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.out {
			t.Errorf("parseLevel(%q)=%v want %v", tt.in, got, tt.out)
		}
	}
}

func TestWithContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", "json")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")
	WithContext(ctx).Info("scored submission", "category", "pothole")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if entry["request_id"] != "req-123" {
		t.Errorf("Expected request_id req-123, got %v", entry["request_id"])
	}
	if entry["category"] != "pothole" {
		t.Errorf("Expected category pothole, got %v", entry["category"])
	}
}

func TestLevelsAndFormats(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "warn", "text")

	Debug("debug message")
	Info("info message", "k", "v")
	Warn("warn message")
	Error("error message")
	With("component", "test").Warn("tagged")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("Expected debug and info to be filtered, got %s", out)
	}
	for _, want := range []string{"warn message", "error message", "component=test"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got %s", want, out)
		}
	}

	if WithContext(context.Background()) == nil {
		t.Fatal("WithContext returned nil")
	}
}
