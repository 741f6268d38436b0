package audit

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rahul/nexus/internal/intent"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(raw string, confirmed bool) intent.Record {
	return intent.Record{
		Timestamp: time.Now(),
		RawInput:  raw,
		Plan: intent.Plan{
			Mode:      intent.ModeAction,
			Narrative: "I'll close Chrome.",
			Steps:     []intent.Step{{Kind: intent.KindCloseApp, Args: map[string]string{"app": "Chrome"}}},
		},
		Verdict: intent.Verdict{
			Decision:             intent.DecisionAccept,
			RequiresConfirmation: true,
		},
		Confirmed: confirmed,
		Results: []intent.StepResult{
			{Step: intent.Step{Kind: intent.KindCloseApp}, Status: intent.StatusFailure, Detail: "unsaved changes"},
		},
	}
}

func TestAppendAndRecent(t *testing.T) {
	store := openTestStore(t)

	if err := store.Append(sampleRecord("close chrome", true)); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(sampleRecord("close chrome again", false)); err != nil {
		t.Fatal(err)
	}

	records, err := store.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	// Chronological order: oldest first.
	if records[0].RawInput != "close chrome" {
		t.Errorf("expected oldest first, got %q", records[0].RawInput)
	}

	first := records[0]
	if first.Plan.Mode != intent.ModeAction || !first.Confirmed {
		t.Errorf("record round-trip lost fields: %+v", first)
	}
	if len(first.Plan.Steps) != 1 || first.Plan.Steps[0].Args["app"] != "Chrome" {
		t.Errorf("steps did not round-trip: %+v", first.Plan.Steps)
	}
	if len(first.Results) != 1 || first.Results[0].Detail != "unsaved changes" {
		t.Errorf("results did not round-trip: %+v", first.Results)
	}
}

func TestAppendRedactsRawInput(t *testing.T) {
	store := openTestStore(t)

	rec := sampleRecord("my key is sk-abcdefghijklmnopqrstuv and password=hunter2", false)
	if err := store.Append(rec); err != nil {
		t.Fatal(err)
	}

	records, err := store.Recent(1)
	if err != nil {
		t.Fatal(err)
	}
	raw := records[0].RawInput
	if strings.Contains(raw, "sk-abcdef") || strings.Contains(raw, "hunter2") {
		t.Errorf("secrets leaked into the audit log: %q", raw)
	}
	if !strings.Contains(raw, "[REDACTED]") {
		t.Errorf("expected redaction marker, got %q", raw)
	}
}

func TestRedact(t *testing.T) {
	in := "password: swordfish"
	if out := Redact(in); strings.Contains(out, "swordfish") {
		t.Errorf("Redact(%q) = %q", in, out)
	}
	if out := Redact("nothing secret here"); out != "nothing secret here" {
		t.Errorf("Redact changed clean text: %q", out)
	}
}
