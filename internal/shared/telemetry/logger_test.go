package telemetry

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestErrorWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Error("pipeline.failed", map[string]any{"stage": "extracting", "request_id": "req-1"})

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	if payload["msg"] != "pipeline.failed" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["level"] != "error" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["stage"] != "extracting" {
		t.Fatalf("unexpected stage: %v", payload["stage"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts field")
	}
}

func TestSetLevelFiltersInfo(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("error")
	defer func() {
		SetOutput(os.Stdout)
		SetLevel("info")
	}()

	Info("request.complete", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %s", buf.String())
	}
}
