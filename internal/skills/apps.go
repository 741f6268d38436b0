package skills

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rahul/nexus/internal/intent"
)

// AppController abstracts the OS application surface. Close is always a
// graceful quit; no implementation may use a forceful termination primitive.
type AppController interface {
	Open(ctx context.Context, app string) error
	Close(ctx context.Context, app string) error
	Running(ctx context.Context) ([]string, error)
}

// Protector answers whether an app is on the protected list. Satisfied by
// safety.Gate; skills re-check it as a second guard behind the gate.
type Protector interface {
	IsProtected(app string) bool
}

// MacController drives macOS via `open -a` and System Events AppleScript.
type MacController struct {
	Timeout time.Duration
}

func NewMacController() *MacController {
	return &MacController{Timeout: 10 * time.Second}
}

func (c *MacController) run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %v (%s)", name, err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *MacController) Open(ctx context.Context, app string) error {
	_, err := c.run(ctx, "open", "-a", app)
	return err
}

// Close asks the app to quit via AppleScript. The app may refuse (unsaved
// changes) and keep running; callers verify with Running.
func (c *MacController) Close(ctx context.Context, app string) error {
	script := fmt.Sprintf(`tell application "%s" to quit`, applescriptQuote(app))
	_, err := c.run(ctx, "osascript", "-e", script)
	return err
}

// Running returns the names of foreground apps, per System Events.
func (c *MacController) Running(ctx context.Context) ([]string, error) {
	const script = `tell application "System Events" to get name of every application process whose background only is false`
	out, err := c.run(ctx, "osascript", "-e", script)
	if err != nil {
		return nil, err
	}
	var apps []string
	for _, part := range strings.Split(out, ",") {
		if name := strings.TrimSpace(part); name != "" {
			apps = append(apps, name)
		}
	}
	return apps, nil
}

func applescriptQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// installedApps scans the application folders for .app bundles.
func installedApps() []string {
	home, _ := os.UserHomeDir()
	var apps []string
	for _, dir := range []string{"/Applications", filepath.Join(home, "Applications")} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if name, found := strings.CutSuffix(e.Name(), ".app"); found {
				apps = append(apps, name)
			}
		}
	}
	sort.Strings(apps)
	return apps
}

// ResolveApp deterministically maps a requested name onto an installed or
// running app: exact, then case-insensitive, then pluralized, then unique
// substring. Ambiguity is an error, never a guess.
func ResolveApp(requested string, installed, running []string) (string, error) {
	req := strings.TrimSpace(requested)
	if req == "" {
		return "", fmt.Errorf("missing app name")
	}

	for _, a := range installed {
		if a == req {
			return a, nil
		}
	}

	low := strings.ToLower(req)
	for _, a := range installed {
		if strings.ToLower(a) == low {
			return a, nil
		}
	}

	// Pluralization: "Note" -> "Notes".
	if !strings.HasSuffix(low, "s") {
		for _, a := range installed {
			if strings.ToLower(a) == low+"s" {
				return a, nil
			}
		}
	}

	if match, err := uniqueContains(req, low, installed); match != "" || err != nil {
		return match, err
	}
	if match, err := uniqueContains(req, low, running); match != "" || err != nil {
		return match, err
	}

	return "", fmt.Errorf("app %q not found; try the full app name (e.g. \"Notes\", \"IntelliJ IDEA\")", req)
}

func uniqueContains(req, low string, candidates []string) (string, error) {
	var matches []string
	for _, a := range candidates {
		if strings.Contains(strings.ToLower(a), low) {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		return "", nil
	case 1:
		return matches[0], nil
	default:
		n := len(matches)
		if n > 6 {
			matches = matches[:6]
		}
		return "", fmt.Errorf("app %q is ambiguous, did you mean: %s?", req, strings.Join(matches, ", "))
	}
}

// OpenApp launches a named application.
type OpenApp struct {
	Controller AppController
}

func (s *OpenApp) Kind() intent.Kind { return intent.KindOpenApp }

func (s *OpenApp) Execute(ctx context.Context, step intent.Step) intent.StepResult {
	running, _ := s.Controller.Running(ctx)
	resolved, err := ResolveApp(step.Arg("app"), installedApps(), running)
	if err != nil {
		return fail(step, err.Error())
	}

	if err := s.Controller.Open(ctx, resolved); err != nil {
		return fail(step, fmt.Sprintf("could not open %s: %v", resolved, err))
	}
	return ok(step, fmt.Sprintf("Opened %s.", resolved))
}

// CloseApp gracefully quits a named application.
type CloseApp struct {
	Controller AppController
	Protected  Protector
}

func (s *CloseApp) Kind() intent.Kind { return intent.KindCloseApp }

func (s *CloseApp) Execute(ctx context.Context, step intent.Step) intent.StepResult {
	running, _ := s.Controller.Running(ctx)
	resolved, err := ResolveApp(step.Arg("app"), installedApps(), running)
	if err != nil {
		return fail(step, err.Error())
	}

	// Second guard behind the safety gate: resolution may land on a
	// protected app even when the requested name did not.
	if s.Protected != nil && s.Protected.IsProtected(resolved) {
		return fail(step, fmt.Sprintf("%s is a protected app and stays open.", resolved))
	}

	if err := s.Controller.Close(ctx, resolved); err != nil {
		return fail(step, fmt.Sprintf("could not quit %s: %v", resolved, err))
	}

	if still, _ := s.Controller.Running(ctx); contains(still, resolved) {
		return fail(step, fmt.Sprintf("Asked %s to quit, but it is still running (possibly waiting on a save prompt).", resolved))
	}
	return ok(step, fmt.Sprintf("Quit %s.", resolved))
}

// CloseAllApps quits every running non-protected app. The pipeline normally
// expands this kind into individual CLOSE_APP steps before confirmation, so
// the user sees the real target list; this executor covers direct dispatch.
type CloseAllApps struct {
	Controller AppController
	Protected  Protector
}

func (s *CloseAllApps) Kind() intent.Kind { return intent.KindCloseAllApps }

func (s *CloseAllApps) Execute(ctx context.Context, step intent.Step) intent.StepResult {
	running, err := s.Controller.Running(ctx)
	if err != nil {
		return fail(step, fmt.Sprintf("could not list running apps: %v", err))
	}

	var closed, failed []string
	for _, app := range running {
		if s.Protected != nil && s.Protected.IsProtected(app) {
			continue
		}
		if err := s.Controller.Close(ctx, app); err != nil {
			failed = append(failed, app)
			continue
		}
		closed = append(closed, app)
	}

	if len(failed) > 0 {
		return fail(step, fmt.Sprintf("closed %d apps; could not quit: %s", len(closed), strings.Join(failed, ", ")))
	}
	if len(closed) == 0 {
		return ok(step, "Nothing to close.")
	}
	return ok(step, fmt.Sprintf("Closed %s.", strings.Join(closed, ", ")))
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
