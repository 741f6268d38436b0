// Package router maps each intent kind to exactly one registered skill.
// The table is built once at startup and checked exhaustively: a missing
// or duplicate registration is a programming error, not a runtime case.
package router

import (
	"fmt"

	"github.com/rahul/nexus/internal/intent"
	"github.com/rahul/nexus/internal/skills"
)

// Router is a static one-to-one mapping from Kind to executor. There is no
// default or catch-all entry.
type Router struct {
	table map[intent.Kind]skills.Executor
}

// New builds the dispatch table and fails if any routable kind lacks an
// executor, any executor registers twice, or anything registers under an
// unrecognized kind. Callers treat an error here as fatal.
func New(executors ...skills.Executor) (*Router, error) {
	table := make(map[intent.Kind]skills.Executor, len(executors))

	for _, e := range executors {
		kind := e.Kind()
		if intent.ParseKind(string(kind)) == intent.KindUnknown {
			return nil, fmt.Errorf("router: executor registered under unrecognized kind %q", kind)
		}
		if _, dup := table[kind]; dup {
			return nil, fmt.Errorf("router: duplicate executor for %s", kind)
		}
		table[kind] = e
	}

	for _, kind := range intent.Kinds() {
		if _, found := table[kind]; !found {
			return nil, fmt.Errorf("router: no executor registered for %s", kind)
		}
	}

	return &Router{table: table}, nil
}

// Dispatch returns the executor for the step's kind. With a Router built by
// New this cannot miss; the error exists so a corrupted step surfaces as a
// step failure instead of a panic.
func (r *Router) Dispatch(step intent.Step) (skills.Executor, error) {
	e, found := r.table[step.Kind]
	if !found {
		return nil, fmt.Errorf("router: no executor for kind %q", step.Kind)
	}
	return e, nil
}
