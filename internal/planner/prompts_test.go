package planner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePrompt(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadPack_AssemblesLanesInOrder(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "identity.md", "---\norder: 1\n---\nIdentity Content")
	writePrompt(t, dir, "style.md", "---\norder: 2\n---\nStyle Content")
	writePrompt(t, dir, "planner.md", "---\nlane: planner\n---\nPlanner Content")
	writePrompt(t, dir, "extra.md", "Extra Content")

	pack, err := LoadPack(dir)
	if err != nil {
		t.Fatal(err)
	}

	persona := pack.Persona()
	for _, part := range []string{"Identity Content", "Style Content", "Extra Content"} {
		if !strings.Contains(persona, part) {
			t.Errorf("persona missing %q", part)
		}
	}
	if strings.Contains(persona, "Planner Content") {
		t.Error("planner lane leaked into the persona")
	}
	if strings.Index(persona, "Identity Content") >= strings.Index(persona, "Style Content") {
		t.Error("order front matter not respected")
	}

	if pack.Planner() != "Planner Content" {
		t.Errorf("planner prompt = %q", pack.Planner())
	}
}

func TestLoadPack_MissingDirFallsBackToDefaults(t *testing.T) {
	pack, err := LoadPack(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if pack.Persona() == "" || pack.Planner() == "" {
		t.Error("defaults must cover a missing prompts directory")
	}
}

func TestSplitFrontMatter_MalformedReadsAsContent(t *testing.T) {
	meta, body := splitFrontMatter([]byte("---\n: : bad\n---\nBody"))
	if meta.Lane != "" || meta.Order != 0 {
		t.Errorf("malformed front matter should clear meta: %+v", meta)
	}
	if !strings.Contains(body, "Body") {
		t.Errorf("body lost: %q", body)
	}
}
