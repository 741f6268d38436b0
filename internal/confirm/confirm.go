// Package confirm is the human approval gate: a validated plan blocks here
// until an explicit yes or no arrives. There is no timeout; an unanswered
// prompt leaves the turn pending until the user or a shutdown resolves it.
package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rahul/nexus/internal/intent"
)

// State tracks a confirmation ticket through its tiny state machine.
type State string

const (
	StatePending   State = "PENDING"
	StateConfirmed State = "CONFIRMED"
	StateDeclined  State = "DECLINED"
)

// Ticket captures one pending decision with its turn context, so a surface
// can present the plan and resolve the decision without nested callbacks.
type Ticket struct {
	Plan    intent.Plan
	Verdict intent.Verdict
	state   State
}

func NewTicket(plan intent.Plan, verdict intent.Verdict) *Ticket {
	return &Ticket{Plan: plan, Verdict: verdict, state: StatePending}
}

func (t *Ticket) State() State { return t.state }

// Resolve moves a pending ticket to its terminal state. Resolving twice is
// a no-op; the first decision stands.
func (t *Ticket) Resolve(approved bool) {
	if t.state != StatePending {
		return
	}
	if approved {
		t.state = StateConfirmed
	} else {
		t.state = StateDeclined
	}
}

// Confirmer presents a validated plan and blocks until a decision arrives.
type Confirmer interface {
	Confirm(ctx context.Context, plan intent.Plan, verdict intent.Verdict) (bool, error)
}

// Terminal asks on a textual surface: it prints the narrative plus the
// filtered steps and reads one line. The answer defaults to no.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewTerminal builds a terminal confirmer. When in is already a
// *bufio.Reader it is used as-is, so a surface that owns the input stream
// can share it without the confirmer buffering lines away from it.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	reader, ok := in.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(in)
	}
	return &Terminal{In: in, Out: out, reader: reader}
}

func (t *Terminal) Confirm(ctx context.Context, plan intent.Plan, verdict intent.Verdict) (bool, error) {
	ticket := NewTicket(plan, verdict)

	fmt.Fprint(t.Out, Prompt(plan, verdict))

	line, err := t.reader.ReadString('\n')
	if err != nil && line == "" {
		ticket.Resolve(false)
		return false, err
	}

	ticket.Resolve(Positive(line))
	return ticket.State() == StateConfirmed, nil
}

// Prompt renders the plan presentation and the question. Shared by the
// terminal and remote surfaces so the user always confirms the same text.
func Prompt(plan intent.Plan, verdict intent.Verdict) string {
	var b strings.Builder
	if plan.Narrative != "" {
		fmt.Fprintf(&b, "%s\n", plan.Narrative)
	}
	for _, w := range verdict.Warnings {
		fmt.Fprintf(&b, "  ⚠ %s\n", w)
	}
	for _, s := range verdict.Steps {
		fmt.Fprintf(&b, "  • %s\n", DescribeStep(s))
	}
	b.WriteString("Proceed? [y/N] ")
	return b.String()
}

// DescribeStep renders one step for human eyes.
func DescribeStep(s intent.Step) string {
	if len(s.Args) == 0 {
		return string(s.Kind)
	}
	parts := make([]string, 0, len(s.Args))
	for _, key := range []string{"app", "url", "query", "recipient", "message", "content"} {
		if v := s.Arg(key); v != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", key, v))
		}
	}
	return fmt.Sprintf("%s %s", s.Kind, strings.Join(parts, " "))
}

// Static returns a fixed decision. Used by tests and by surfaces that
// resolved the decision elsewhere.
type Static struct {
	Decision bool
}

func (s Static) Confirm(ctx context.Context, plan intent.Plan, verdict intent.Verdict) (bool, error) {
	return s.Decision, nil
}

var positiveWords = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "yup": true, "sure": true,
	"ok": true, "okay": true, "alright": true, "y": true,
	"do it": true, "confirm": true, "confirmed": true, "go ahead": true,
	"proceed": true, "absolutely": true, "of course": true, "go for it": true,
	"yes please": true, "please do": true, "correct": true,
}

var negativeWords = map[string]bool{
	"no": true, "nah": true, "nope": true, "n": true, "cancel": true,
	"stop": true, "abort": true, "never": true, "negative": true,
	"no way": true, "not now": true, "wait": true, "hold on": true,
	"no thanks": true,
}

// Positive interprets a free-form answer. Anything not clearly positive is
// treated as a no: declining is always the safe default.
func Positive(answer string) bool {
	clean := strings.ToLower(strings.TrimSpace(answer))
	if clean == "" {
		return false
	}
	if positiveWords[clean] {
		return true
	}
	if negativeWords[clean] {
		return false
	}
	for phrase := range negativeWords {
		if len(phrase) > 2 && strings.Contains(clean, phrase) {
			return false
		}
	}
	for phrase := range positiveWords {
		if len(phrase) > 2 && strings.Contains(clean, phrase) {
			return true
		}
	}
	return false
}
