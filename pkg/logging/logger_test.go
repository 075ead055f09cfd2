package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DBG ", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"err", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseLevel(tt.raw); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewJSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "students", Config{Level: "info", Format: "json"})

	logger.Info("student added", slog.String("student_id", "s-1"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "students" {
		t.Errorf("service: expected students, got %v", entry["service"])
	}
	if entry["student_id"] != "s-1" {
		t.Errorf("student_id: expected s-1, got %v", entry["student_id"])
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "", Config{Level: "warn"})

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info entry should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn entry missing: %q", out)
	}
}
