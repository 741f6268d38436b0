package observability

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
)

func testLogger(t *testing.T, out *bytes.Buffer) *Logger {
	t.Helper()
	return &Logger{
		out:        out,
		llmLogPath: filepath.Join(t.TempDir(), "llm.jsonl"),
		maxSize:    1024,
	}
}

func TestLogHeartbeat(t *testing.T) {
	var out bytes.Buffer
	testLogger(t, &out).LogHeartbeat()

	var evt Event
	if err := json.Unmarshal(out.Bytes(), &evt); err != nil {
		t.Fatalf("heartbeat is not valid JSON: %v (%q)", err, out.String())
	}
	if evt.Type != EventTypeHeartbeat {
		t.Errorf("type = %s, want %s", evt.Type, EventTypeHeartbeat)
	}
	if evt.Timestamp.IsZero() {
		t.Error("heartbeat must carry a timestamp")
	}
}

func TestLogStepCarriesSession(t *testing.T) {
	var out bytes.Buffer
	testLogger(t, &out).LogStep("local", map[string]string{"status": "success"})

	var evt Event
	if err := json.Unmarshal(out.Bytes(), &evt); err != nil {
		t.Fatal(err)
	}
	if evt.Type != EventTypeStep || evt.Session != "local" {
		t.Errorf("unexpected event: %+v", evt)
	}
}
