package safety

import (
	"reflect"
	"testing"

	"github.com/rahul/nexus/internal/intent"
)

func actionPlan(steps ...intent.Step) intent.Plan {
	return intent.Plan{Mode: intent.ModeAction, Narrative: "test", Steps: steps}
}

func TestValidate_UnknownKindRejectsWholePlan(t *testing.T) {
	gate := NewGate(nil)
	plan := actionPlan(
		intent.Step{Kind: intent.KindOpenApp, Args: map[string]string{"app": "Safari"}},
		intent.Step{Kind: intent.ParseKind("FORMAT_DISK")},
	)

	v := gate.Validate(plan)
	if !v.Rejected() {
		t.Fatalf("expected reject, got %s", v.Decision)
	}
	if len(v.Steps) != 0 {
		t.Errorf("rejected verdict must carry no steps, got %d", len(v.Steps))
	}
}

func TestValidate_MissingArgsDropsStepWithWarning(t *testing.T) {
	gate := NewGate(nil)
	plan := actionPlan(
		intent.Step{Kind: intent.KindCloseApp, Args: map[string]string{"app": "Chrome"}},
		intent.Step{Kind: intent.KindSearchWeb}, // no query
	)

	v := gate.Validate(plan)
	if v.Decision != intent.DecisionAcceptWarned {
		t.Fatalf("expected accept_with_warnings, got %s", v.Decision)
	}
	if len(v.Steps) != 1 || v.Steps[0].Kind != intent.KindCloseApp {
		t.Fatalf("expected only the close step to survive, got %v", v.Steps)
	}
	if len(v.Warnings) != 1 {
		t.Errorf("expected one warning, got %v", v.Warnings)
	}
}

func TestValidate_AllStepsMissingArgsRejects(t *testing.T) {
	gate := NewGate(nil)
	plan := actionPlan(intent.Step{Kind: intent.KindOpenApp})

	if v := gate.Validate(plan); !v.Rejected() {
		t.Fatalf("plan emptied by incomplete steps should reject, got %s", v.Decision)
	}
}

func TestValidate_ProtectedTargetDropped(t *testing.T) {
	gate := NewGate(nil)
	plan := actionPlan(intent.Step{Kind: intent.KindCloseApp, Args: map[string]string{"app": "Finder"}})

	v := gate.Validate(plan)
	if v.Rejected() {
		t.Fatalf("protected-only drop should not reject, got %s", v.Decision)
	}
	if len(v.Steps) != 0 {
		t.Fatalf("protected step must not survive, got %v", v.Steps)
	}
	if len(v.Warnings) == 0 {
		t.Error("expected a warning explaining the drop")
	}
}

func TestValidate_ProtectedCheckIsCaseInsensitive(t *testing.T) {
	gate := NewGate([]string{"Finder"})
	plan := actionPlan(intent.Step{Kind: intent.KindCloseApp, Args: map[string]string{"app": "finder"}})

	if v := gate.Validate(plan); len(v.Steps) != 0 {
		t.Fatalf("case variation must not bypass the protected list, got %v", v.Steps)
	}
}

func TestValidate_DestructiveStepsFlagConfirmation(t *testing.T) {
	gate := NewGate(nil)

	v := gate.Validate(actionPlan(intent.Step{Kind: intent.KindCloseApp, Args: map[string]string{"app": "Chrome"}}))
	if !v.RequiresConfirmation {
		t.Error("CLOSE_APP is destructive and must be flagged")
	}

	v = gate.Validate(actionPlan(intent.Step{Kind: intent.KindSearchWeb, Args: map[string]string{"query": "weather"}}))
	if v.RequiresConfirmation {
		t.Error("SEARCH_WEB must not be flagged destructive")
	}
}

func TestValidate_Idempotent(t *testing.T) {
	gate := NewGate(nil)
	plan := actionPlan(
		intent.Step{Kind: intent.KindCloseApp, Args: map[string]string{"app": "Finder"}},
		intent.Step{Kind: intent.KindOpenApp, Args: map[string]string{"app": "Safari"}},
		intent.Step{Kind: intent.KindSearchWeb},
	)

	first := gate.Validate(plan)
	second := gate.Validate(plan)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("validation is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestValidate_NeverRewritesArguments(t *testing.T) {
	gate := NewGate(nil)
	step := intent.Step{Kind: intent.KindOpenApp, Args: map[string]string{"app": "  Safari "}}
	v := gate.Validate(actionPlan(step))

	if len(v.Steps) != 1 {
		t.Fatalf("expected one surviving step, got %v", v.Steps)
	}
	if v.Steps[0].Args["app"] != "  Safari " {
		t.Errorf("gate rewrote an argument: %q", v.Steps[0].Args["app"])
	}
}
