// Package intent defines the closed vocabulary of the action pipeline:
// turn modes, step kinds, plans, verdicts and results. Pure data, no behavior.
package intent

import (
	"strings"
	"time"
)

// Mode classifies a user turn: pure conversation or OS action.
type Mode string

const (
	ModeChat   Mode = "CHAT"
	ModeAction Mode = "ACTION"
)

// Kind is the closed set of executable action types. Adding a kind requires
// a safety rule and a router entry; an unregistered kind never reaches a skill.
type Kind string

const (
	// KindUnknown is the parse-failure sentinel. It is never routable.
	KindUnknown Kind = "UNKNOWN"

	KindOpenApp      Kind = "OPEN_APP"
	KindCloseApp     Kind = "CLOSE_APP"
	KindCloseAllApps Kind = "CLOSE_ALL_APPS"
	KindSearchWeb    Kind = "SEARCH_WEB"
	KindOpenURL      Kind = "OPEN_URL"
	KindCreateNote   Kind = "CREATE_NOTE"
	KindSendMessage  Kind = "SEND_MESSAGE"
)

// Kinds returns every routable kind. KindUnknown is deliberately absent.
func Kinds() []Kind {
	return []Kind{
		KindOpenApp,
		KindCloseApp,
		KindCloseAllApps,
		KindSearchWeb,
		KindOpenURL,
		KindCreateNote,
		KindSendMessage,
	}
}

// ParseKind maps a raw intent string to a Kind. Matching is exact on the
// upper-cased name; anything else is KindUnknown. No fuzzy matching.
func ParseKind(s string) Kind {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k
		}
	}
	return KindUnknown
}

// Step is one typed action with opaque arguments. Immutable once produced
// by the planner; only the safety gate and the executing skill interpret Args.
type Step struct {
	Kind Kind              `json:"intent"`
	Args map[string]string `json:"args,omitempty"`
}

// Arg returns the named argument, trimmed. Missing keys return "".
func (s Step) Arg(key string) string {
	return strings.TrimSpace(s.Args[key])
}

// Plan is the structured output of the plan generator: an operating mode,
// a human-readable narrative and an ordered step sequence. Order is
// execution order; later steps may depend on OS state left by earlier ones.
type Plan struct {
	Mode      Mode   `json:"mode"`
	Narrative string `json:"plan"`
	Steps     []Step `json:"steps,omitempty"`
}

// Decision is the plan-level outcome of safety validation.
type Decision string

const (
	DecisionAccept       Decision = "accept"
	DecisionAcceptWarned Decision = "accept_with_warnings"
	DecisionReject       Decision = "reject"
)

// Verdict carries the safety gate's decision plus the filtered step
// sequence. Unsafe steps are dropped, never rewritten.
type Verdict struct {
	Decision Decision `json:"decision"`
	Reason   string   `json:"reason,omitempty"`
	Steps    []Step   `json:"steps,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	// RequiresConfirmation marks destructive plans. Advisory: the
	// confirmation gate currently asks for every plan with steps.
	RequiresConfirmation bool `json:"requires_confirmation"`
}

// Rejected reports whether the plan may proceed to confirmation.
func (v Verdict) Rejected() bool {
	return v.Decision == DecisionReject
}

// Status is a step's execution outcome, reported by the skill, never inferred.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// StepResult is the typed outcome of executing one step.
type StepResult struct {
	Step   Step   `json:"step"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Succeeded reports whether the step completed.
func (r StepResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Record is the write-once account of one full user turn, owned by the
// audit store after persistence.
type Record struct {
	Timestamp time.Time    `json:"timestamp"`
	RawInput  string       `json:"raw_input"`
	Plan      Plan         `json:"plan"`
	Verdict   Verdict      `json:"verdict"`
	Confirmed bool         `json:"confirmed"`
	Results   []StepResult `json:"results,omitempty"`
}
