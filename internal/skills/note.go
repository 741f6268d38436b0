package skills

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rahul/nexus/internal/intent"
)

// Note answers CREATE_NOTE by writing a timestamped markdown file into the
// configured notes directory.
type Note struct {
	Dir string
}

func NewNote(dir string) *Note {
	if dir == "" {
		dir = "notes"
	}
	return &Note{Dir: dir}
}

func (n *Note) Kind() intent.Kind { return intent.KindCreateNote }

func (n *Note) Execute(ctx context.Context, step intent.Step) intent.StepResult {
	content := step.Arg("content")
	title := noteTitle(content)

	if err := os.MkdirAll(n.Dir, 0o755); err != nil {
		return fail(step, fmt.Sprintf("could not create notes directory: %v", err))
	}

	name := fmt.Sprintf("%s-%s.md", time.Now().Format("2006-01-02-150405"), slug(title))
	path := filepath.Join(n.Dir, name)

	body := fmt.Sprintf("# %s\n\n%s\n", title, content)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fail(step, fmt.Sprintf("could not write note: %v", err))
	}
	return ok(step, fmt.Sprintf("Saved note %q.", title))
}

// noteTitle takes the first line of the content, capped the way the
// original notes surface does.
func noteTitle(content string) string {
	first := content
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	first = strings.TrimSpace(first)
	if len(first) > 60 {
		first = first[:60]
	}
	if first == "" {
		return "Note"
	}
	return first
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "note"
	}
	if len(out) > 40 {
		out = out[:40]
	}
	return out
}
