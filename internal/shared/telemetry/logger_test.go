package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestWriteEmitsJSONLine(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Warn("translate.fallback", map[string]any{
		"language": "hi",
		"error":    errors.New("openai http status 503"),
		"msg":      "overridden",
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" {
		t.Fatalf("expected warn level, got %v", entry["level"])
	}
	if entry["msg"] != "translate.fallback" {
		t.Fatalf("reserved msg key must not be overridden, got %v", entry["msg"])
	}
	if entry["error"] != "openai http status 503" {
		t.Fatalf("expected error string, got %v", entry["error"])
	}
	if entry["ts"] == "" {
		t.Fatalf("expected timestamp")
	}
}
