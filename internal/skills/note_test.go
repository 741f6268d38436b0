package skills

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rahul/nexus/internal/intent"
)

func TestNote_WritesMarkdownFile(t *testing.T) {
	dir := t.TempDir()
	skill := NewNote(dir)

	step := intent.Step{
		Kind: intent.KindCreateNote,
		Args: map[string]string{"content": "Buy milk\nAnd eggs."},
	}

	res := skill.Execute(context.Background(), step)
	if !res.Succeeded() {
		t.Fatalf("expected success: %s", res.Detail)
	}
	if !strings.Contains(res.Detail, "Buy milk") {
		t.Errorf("detail should carry the title: %s", res.Detail)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one note file, got %d", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "And eggs.") {
		t.Errorf("note body missing content: %s", data)
	}
}

func TestNoteTitle(t *testing.T) {
	long := strings.Repeat("x", 100)
	cases := map[string]string{
		"Buy milk\nrest":  "Buy milk",
		"  trimmed  ":     "trimmed",
		"":                "Note",
		long:              long[:60],
	}
	for in, want := range cases {
		if got := noteTitle(in); got != want {
			t.Errorf("noteTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
