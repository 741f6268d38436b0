// Package skills holds the deterministic executors behind each intent kind.
// A skill performs one real-world effect and reports a typed outcome; it
// never panics outward and never silently retries a destructive action.
package skills

import (
	"context"

	"github.com/rahul/nexus/internal/intent"
)

// Executor is the contract every skill implements. Execute must convert any
// internal error into a failure result with a human-readable detail.
type Executor interface {
	Kind() intent.Kind
	Execute(ctx context.Context, step intent.Step) intent.StepResult
}

// Unavailable stands in for a skill whose backing service is not
// configured. It keeps dispatch exhaustive while turning every step into a
// clear failure instead of a crash.
type Unavailable struct {
	For    intent.Kind
	Reason string
}

func (u *Unavailable) Kind() intent.Kind { return u.For }

func (u *Unavailable) Execute(ctx context.Context, step intent.Step) intent.StepResult {
	return fail(step, u.Reason)
}

func ok(step intent.Step, detail string) intent.StepResult {
	return intent.StepResult{Step: step, Status: intent.StatusSuccess, Detail: detail}
}

func fail(step intent.Step, detail string) intent.StepResult {
	return intent.StepResult{Step: step, Status: intent.StatusFailure, Detail: detail}
}
