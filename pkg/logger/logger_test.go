package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Service: "capi-relay"})

	log.WithRequestID("req-123").Info("processing event", "event_name", "Purchase")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON record, got %q: %v", buf.String(), err)
	}
	if record[RequestID] != "req-123" {
		t.Errorf("request_id = %v, want req-123", record[RequestID])
	}
	if record[SERVICE] != "capi-relay" {
		t.Errorf("service = %v, want capi-relay", record[SERVICE])
	}
	if record["event_name"] != "Purchase" {
		t.Errorf("event_name = %v, want Purchase", record["event_name"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextFormatAndDiscard(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Output: &buf, Format: TEXT, Level: WARN}).Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %q", buf.String())
	}

	Discard().Error("nothing")
}
