package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "json", Output: &buf})

	Info("generation finished", "status", "ok", "attempts", 2)
	Error("store unavailable", errors.New("disk full"), "driver", "sqlite3")
	Debug("model selected", "model", "models/gemini-2.5-flash")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 3 {
		t.Fatalf("Expected at least 3 log lines, got %d: %s", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-3]), &entry); err != nil {
		t.Fatalf("Log line is not JSON: %v", err)
	}
	if entry["message"] != "generation finished" || entry["status"] != "ok" || entry["level"] != "info" {
		t.Errorf("Unexpected entry: %v", entry)
	}

	if !strings.Contains(lines[len(lines)-2], `"error":"disk full"`) {
		t.Errorf("Error line should carry the error: %s", lines[len(lines)-2])
	}

	// Later calls do not replace the logger.
	Init(Options{Level: "error", Output: &bytes.Buffer{}})
	Warn("still here")
	if !strings.Contains(buf.String(), "still here") {
		t.Error("Init should only take effect once")
	}
	if Get() == nil {
		t.Error("Get should never return nil")
	}
}
