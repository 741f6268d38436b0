// Package safety validates candidate plans before anything executes.
// The gate is the sole authority: planner output is untrusted and a
// "safe" claim from the model never substitutes for these rules.
package safety

import (
	"fmt"
	"strings"

	"github.com/rahul/nexus/internal/intent"
)

// DefaultProtectedApps are processes that must never be closed: core OS
// surfaces plus the process hosting this pipeline.
var DefaultProtectedApps = []string{
	"System",
	"System Settings",
	"SystemUIServer",
	"WindowServer",
	"ControlCenter",
	"NotificationCenter",
	"Finder",
	"Dock",
	"loginwindow",
	"Terminal",
	"iTerm2",
	"Nexus",
}

// requiredArgs is the per-kind required-argument set. Membership in this
// table is also the registration check: a kind absent here is unknown.
var requiredArgs = map[intent.Kind][]string{
	intent.KindOpenApp:      {"app"},
	intent.KindCloseApp:     {"app"},
	intent.KindCloseAllApps: {},
	intent.KindSearchWeb:    {"query"},
	intent.KindOpenURL:      {"url"},
	intent.KindCreateNote:   {"content"},
	intent.KindSendMessage:  {"recipient", "message"},
}

// destructive marks kinds whose effects warrant explicit confirmation.
var destructive = map[intent.Kind]bool{
	intent.KindCloseApp:     true,
	intent.KindCloseAllApps: true,
	intent.KindSendMessage:  true,
}

// Gate applies static validation rules to a plan. It holds no mutable
// state: validating the same plan twice yields the same verdict.
type Gate struct {
	protected map[string]bool
}

// NewGate builds a gate protecting the given app names (case-insensitive).
// An empty list falls back to DefaultProtectedApps.
func NewGate(protectedApps []string) *Gate {
	if len(protectedApps) == 0 {
		protectedApps = DefaultProtectedApps
	}
	p := make(map[string]bool, len(protectedApps))
	for _, name := range protectedApps {
		if n := strings.TrimSpace(name); n != "" {
			p[strings.ToLower(n)] = true
		}
	}
	return &Gate{protected: p}
}

// IsProtected reports whether an app name is on the protected list.
func (g *Gate) IsProtected(app string) bool {
	return g.protected[strings.ToLower(strings.TrimSpace(app))]
}

// Validate applies the rules to each step in plan order and returns the
// verdict with the filtered step sequence. Steps are dropped, never
// rewritten, so the user always confirms exactly what will run.
func (g *Gate) Validate(plan intent.Plan) intent.Verdict {
	var (
		kept         []intent.Step
		warnings     []string
		argDropped   bool
		requiresConf bool
	)

	for _, step := range plan.Steps {
		// Rule 1: registration. An unknown kind fails the whole plan,
		// closed: it signals a malformed generation or a spoof attempt.
		required, registered := requiredArgs[step.Kind]
		if !registered || step.Kind == intent.KindUnknown {
			return intent.Verdict{
				Decision: intent.DecisionReject,
				Reason:   fmt.Sprintf("unregistered intent %q", step.Kind),
			}
		}

		// Rule 2: argument completeness. Incomplete steps are dropped
		// with a warning rather than failing the plan.
		if missing := missingArgs(step, required); missing != "" {
			argDropped = true
			warnings = append(warnings, fmt.Sprintf("dropped %s: missing %s", step.Kind, missing))
			continue
		}

		// Rule 3: protected targets. Not overridable by plan content.
		if target, blocked := g.protectedTarget(step); blocked {
			warnings = append(warnings, fmt.Sprintf("dropped %s: %s is a protected app", step.Kind, target))
			continue
		}

		if destructive[step.Kind] {
			requiresConf = true
		}
		kept = append(kept, step)
	}

	if len(kept) == 0 && len(plan.Steps) > 0 {
		// Arg-incomplete steps emptied the plan: nothing meaningful was
		// ever requested, fail it. Protected-only drops keep an
		// acceptable (empty) plan so the decline can be explained.
		if argDropped {
			return intent.Verdict{
				Decision: intent.DecisionReject,
				Reason:   strings.Join(warnings, "; "),
				Warnings: warnings,
			}
		}
	}

	decision := intent.DecisionAccept
	if len(warnings) > 0 {
		decision = intent.DecisionAcceptWarned
	}
	return intent.Verdict{
		Decision:             decision,
		Steps:                kept,
		Warnings:             warnings,
		RequiresConfirmation: requiresConf,
	}
}

func missingArgs(step intent.Step, required []string) string {
	var missing []string
	for _, key := range required {
		if step.Arg(key) == "" {
			missing = append(missing, key)
		}
	}
	return strings.Join(missing, ", ")
}

// protectedTarget resolves the step's target and checks it against the
// protected list. Only app-management kinds carry a closable target.
func (g *Gate) protectedTarget(step intent.Step) (string, bool) {
	switch step.Kind {
	case intent.KindCloseApp:
		if app := step.Arg("app"); g.IsProtected(app) {
			return app, true
		}
	case intent.KindOpenApp:
		// Opening the bare System process is never meaningful.
		if app := step.Arg("app"); strings.EqualFold(app, "System") {
			return app, true
		}
	}
	return "", false
}
