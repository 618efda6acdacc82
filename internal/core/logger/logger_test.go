package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithOutput(&buf), WithLevel(slog.LevelDebug))

	log.Info("branch created", "branch", "user/alice/1")

	out := buf.String()
	if !strings.Contains(out, "branch created") || !strings.Contains(out, "user/alice/1") {
		t.Errorf("Unexpected log output: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithOutput(&buf), WithLevel(slog.LevelWarn))

	log.Debug("hidden")
	log.Info("also hidden")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Messages below warn should be filtered: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("Warn message should be logged: %s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithOutput(&buf), WithFormat(FormatJSON))

	log.Info("merge complete", "source", "user/alice/1", "target", "main")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if entry["msg"] != "merge complete" || entry["target"] != "main" {
		t.Errorf("Unexpected JSON entry: %v", entry)
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithOutput(&buf))

	log.With("project", "p1").Info("ready")

	if !strings.Contains(buf.String(), "project=p1") {
		t.Errorf("Expected bound field in output: %s", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	log := Nop()
	ctx := WithContext(context.Background(), log)

	if FromContext(ctx) != log {
		t.Error("Expected the logger stored in the context")
	}
	if FromContext(context.Background()) == nil {
		t.Error("Missing logger should fall back to a no-op, not nil")
	}
}
