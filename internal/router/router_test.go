package router

import (
	"context"
	"strings"
	"testing"

	"github.com/rahul/nexus/internal/intent"
	"github.com/rahul/nexus/internal/skills"
)

type stubExecutor struct {
	kind intent.Kind
}

func (s *stubExecutor) Kind() intent.Kind { return s.kind }

func (s *stubExecutor) Execute(ctx context.Context, step intent.Step) intent.StepResult {
	return intent.StepResult{Step: step, Status: intent.StatusSuccess}
}

func fullSet() []skills.Executor {
	var execs []skills.Executor
	for _, k := range intent.Kinds() {
		execs = append(execs, &stubExecutor{kind: k})
	}
	return execs
}

func TestNew_RequiresFullCoverage(t *testing.T) {
	execs := fullSet()

	if _, err := New(execs...); err != nil {
		t.Fatalf("full set should build: %v", err)
	}

	_, err := New(execs[1:]...)
	if err == nil {
		t.Fatal("missing executor must fail construction")
	}
	if !strings.Contains(err.Error(), string(execs[0].Kind())) {
		t.Errorf("error should name the uncovered kind: %v", err)
	}
}

func TestNew_RejectsDuplicates(t *testing.T) {
	execs := append(fullSet(), &stubExecutor{kind: intent.KindOpenApp})
	if _, err := New(execs...); err == nil {
		t.Fatal("duplicate registration must fail construction")
	}
}

func TestNew_RejectsUnrecognizedKind(t *testing.T) {
	execs := append(fullSet(), &stubExecutor{kind: intent.Kind("FORMAT_DISK")})
	if _, err := New(execs...); err == nil {
		t.Fatal("unrecognized kind must fail construction")
	}
}

func TestDispatch(t *testing.T) {
	r, err := New(fullSet()...)
	if err != nil {
		t.Fatal(err)
	}

	e, err := r.Dispatch(intent.Step{Kind: intent.KindOpenApp})
	if err != nil {
		t.Fatal(err)
	}
	if e.Kind() != intent.KindOpenApp {
		t.Errorf("dispatched wrong executor: %s", e.Kind())
	}

	if _, err := r.Dispatch(intent.Step{Kind: intent.KindUnknown}); err == nil {
		t.Fatal("dispatching an unknown kind must error, never fall back")
	}
}
