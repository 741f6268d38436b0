package confirm

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rahul/nexus/internal/intent"
)

func TestPositive(t *testing.T) {
	yes := []string{"yes", "Yes", " y ", "sure", "go ahead", "yes please", "okay"}
	no := []string{"no", "n", "nope", "cancel", "", "maybe", "what", "actually no thanks"}

	for _, s := range yes {
		if !Positive(s) {
			t.Errorf("Positive(%q) = false, want true", s)
		}
	}
	for _, s := range no {
		if Positive(s) {
			t.Errorf("Positive(%q) = true, want false", s)
		}
	}
}

func TestTicketStateMachine(t *testing.T) {
	ticket := NewTicket(intent.Plan{}, intent.Verdict{})
	if ticket.State() != StatePending {
		t.Fatalf("new ticket should be pending, got %s", ticket.State())
	}

	ticket.Resolve(false)
	if ticket.State() != StateDeclined {
		t.Fatalf("expected declined, got %s", ticket.State())
	}

	// First decision stands.
	ticket.Resolve(true)
	if ticket.State() != StateDeclined {
		t.Error("a resolved ticket must not change state")
	}
}

func TestTerminal_ShowsPlanAndReadsDecision(t *testing.T) {
	plan := intent.Plan{
		Mode:      intent.ModeAction,
		Narrative: "I'll close Chrome.",
	}
	verdict := intent.Verdict{
		Decision: intent.DecisionAccept,
		Steps:    []intent.Step{{Kind: intent.KindCloseApp, Args: map[string]string{"app": "Chrome"}}},
	}

	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("yes\n"), &out)

	approved, err := term.Confirm(context.Background(), plan, verdict)
	if err != nil {
		t.Fatal(err)
	}
	if !approved {
		t.Error("expected approval")
	}
	printed := out.String()
	if !strings.Contains(printed, "I'll close Chrome.") {
		t.Errorf("prompt should show the narrative: %q", printed)
	}
	if !strings.Contains(printed, "CLOSE_APP app=Chrome") {
		t.Errorf("prompt should list the steps: %q", printed)
	}
}

func TestTerminal_SharesCallerBufferedReader(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("yes\nnext command\n"))
	term := NewTerminal(reader, &bytes.Buffer{})

	approved, err := term.Confirm(context.Background(), intent.Plan{}, intent.Verdict{})
	if err != nil {
		t.Fatal(err)
	}
	if !approved {
		t.Fatal("expected approval")
	}

	// The confirmer must consume only its answer line: input typed ahead
	// stays readable on the caller's reader.
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if line != "next command\n" {
		t.Errorf("typed-ahead input swallowed, got %q", line)
	}
}

func TestTerminal_EOFDeclines(t *testing.T) {
	term := NewTerminal(strings.NewReader(""), &bytes.Buffer{})
	approved, _ := term.Confirm(context.Background(), intent.Plan{}, intent.Verdict{})
	if approved {
		t.Error("EOF must decline")
	}
}
