// Package pipeline sequences one user turn through plan, validate, confirm
// and execute, and owns the failure isolation between steps. A step reaches
// a skill only through this chain.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rahul/nexus/internal/confirm"
	"github.com/rahul/nexus/internal/intent"
	"github.com/rahul/nexus/internal/observability"
	"github.com/rahul/nexus/internal/planner"
	"github.com/rahul/nexus/internal/router"
	"github.com/rahul/nexus/internal/safety"
)

// PlanGenerator is the untrusted external plan source plus the two
// conversational lanes.
type PlanGenerator interface {
	Plan(ctx context.Context, raw string, history, runningApps []string) (intent.Plan, error)
	Respond(ctx context.Context, raw string, history []string) (string, error)
	Narrate(ctx context.Context, raw string, results []intent.StepResult) string
}

// AppLister reports the currently running apps, for planner context and
// CLOSE_ALL_APPS expansion.
type AppLister interface {
	Running(ctx context.Context) ([]string, error)
}

// Auditor persists one record per turn and serves recent turns back as
// conversation context.
type Auditor interface {
	Append(rec intent.Record) error
	Recent(limit int) ([]intent.Record, error)
}

type Pipeline struct {
	Planner   PlanGenerator
	Gate      *safety.Gate
	Confirmer confirm.Confirmer
	Router    *router.Router
	Apps      AppLister
	Audit     Auditor
	Logger    *observability.Logger
	Session   string
}

// Turn is the complete outcome of one user turn.
type Turn struct {
	Raw       string
	Plan      intent.Plan
	Verdict   intent.Verdict
	Confirmed bool
	Results   []intent.StepResult
	Reply     string
}

// Run drives one turn to completion. The returned error reports a
// persistence failure only: the turn itself (including its reply) is
// always valid, and already-executed steps are never retried because an
// audit write failed.
func (p *Pipeline) Run(ctx context.Context, raw string) (*Turn, error) {
	observability.SetStatus(observability.StagePlanning, raw)
	defer observability.SetStatus(observability.StageIdle, "")

	history := p.history()
	running := p.runningApps(ctx)

	plan, err := p.Planner.Plan(ctx, raw, history, running)
	if err != nil {
		turn := &Turn{
			Raw:     raw,
			Verdict: intent.Verdict{Decision: intent.DecisionReject, Reason: err.Error()},
			Reply:   "I couldn't put together a plan for that. Mind rephrasing?",
		}
		return turn, p.persist(turn)
	}
	if p.Logger != nil {
		p.Logger.LogPlan(p.Session, raw, plan)
	}

	// CHAT bypasses the gate, the confirmer and the router entirely.
	if plan.Mode == intent.ModeChat {
		return p.chatTurn(ctx, raw, plan, history)
	}

	plan, expandWarnings := p.expand(ctx, plan)

	verdict := p.Gate.Validate(plan)
	if len(expandWarnings) > 0 && !verdict.Rejected() {
		verdict.Warnings = append(expandWarnings, verdict.Warnings...)
		if verdict.Decision == intent.DecisionAccept {
			verdict.Decision = intent.DecisionAcceptWarned
		}
	}
	if p.Logger != nil {
		p.Logger.LogSafetyCheck(p.Session, verdict)
	}
	if verdict.Rejected() {
		turn := &Turn{
			Raw:     raw,
			Plan:    plan,
			Verdict: verdict,
			Reply:   fmt.Sprintf("I can't do that: %s.", verdict.Reason),
		}
		return turn, p.persist(turn)
	}

	// Zero-step plans are never executed silently; the decline is
	// recorded and explained instead.
	if len(verdict.Steps) == 0 {
		turn := &Turn{
			Raw:     raw,
			Plan:    plan,
			Verdict: verdict,
			Reply:   declineReason(verdict),
		}
		return turn, p.persist(turn)
	}

	observability.SetStatus(observability.StageConfirming, plan.Narrative)
	confirmed, err := p.Confirmer.Confirm(ctx, plan, verdict)
	if err != nil {
		confirmed = false
	}
	if p.Logger != nil {
		p.Logger.LogConfirmation(p.Session, confirmed)
	}
	if !confirmed {
		turn := &Turn{
			Raw:     raw,
			Plan:    plan,
			Verdict: verdict,
			Reply:   "Okay, cancelled. Nothing was executed.",
		}
		return turn, p.persist(turn)
	}

	observability.SetStatus(observability.StageExecuting, plan.Narrative)
	results := p.execute(ctx, verdict.Steps)

	turn := &Turn{
		Raw:       raw,
		Plan:      plan,
		Verdict:   verdict,
		Confirmed: true,
		Results:   results,
		Reply:     p.Planner.Narrate(ctx, raw, results),
	}
	return turn, p.persist(turn)
}

func (p *Pipeline) chatTurn(ctx context.Context, raw string, plan intent.Plan, history []string) (*Turn, error) {
	reply := plan.Narrative
	if reply == "" {
		var err error
		reply, err = p.Planner.Respond(ctx, raw, history)
		if err != nil {
			reply = "I'm having trouble thinking right now."
		}
	}
	turn := &Turn{
		Raw:     raw,
		Plan:    plan,
		Verdict: intent.Verdict{Decision: intent.DecisionAccept, Reason: "chat"},
		Reply:   reply,
	}
	return turn, p.persist(turn)
}

// execute dispatches each approved step in order. A failing step never
// aborts its siblings: independent actions report their own outcome.
func (p *Pipeline) execute(ctx context.Context, steps []intent.Step) []intent.StepResult {
	results := make([]intent.StepResult, 0, len(steps))
	for _, step := range steps {
		exec, err := p.Router.Dispatch(step)

		var res intent.StepResult
		if err != nil {
			res = intent.StepResult{Step: step, Status: intent.StatusFailure, Detail: err.Error()}
		} else {
			res = exec.Execute(ctx, step)
		}

		if p.Logger != nil {
			p.Logger.LogStep(p.Session, res)
		}
		results = append(results, res)
	}
	return results
}

// expand splices CLOSE_ALL_APPS into one CLOSE_APP per running
// non-protected app, before validation, so the user confirms the real
// target list. Sibling steps keep their place in the sequence; protected
// apps left open are reported as warnings, never silently skipped.
func (p *Pipeline) expand(ctx context.Context, plan intent.Plan) (intent.Plan, []string) {
	hasCloseAll := false
	for _, s := range plan.Steps {
		if s.Kind == intent.KindCloseAllApps {
			hasCloseAll = true
			break
		}
	}
	if !hasCloseAll {
		return plan, nil
	}

	running, err := p.Apps.Running(ctx)
	if err != nil {
		// Without an app list the meta step stays and dispatches directly.
		return plan, nil
	}

	var steps []intent.Step
	var warnings []string
	for _, s := range plan.Steps {
		if s.Kind != intent.KindCloseAllApps {
			steps = append(steps, s)
			continue
		}
		for _, app := range running {
			if p.Gate.IsProtected(app) {
				warnings = append(warnings, fmt.Sprintf("leaving %s open: protected app", app))
				continue
			}
			steps = append(steps, intent.Step{Kind: intent.KindCloseApp, Args: map[string]string{"app": app}})
		}
	}
	return intent.Plan{Mode: plan.Mode, Narrative: plan.Narrative, Steps: steps}, warnings
}

func (p *Pipeline) history() []string {
	if p.Audit == nil {
		return nil
	}
	records, err := p.Audit.Recent(5)
	if err != nil {
		return nil
	}
	var lines []string
	for _, rec := range records {
		lines = append(lines, "User: "+rec.RawInput)
		if rec.Plan.Narrative != "" {
			lines = append(lines, "Nexus: "+rec.Plan.Narrative)
		}
	}
	return lines
}

func (p *Pipeline) runningApps(ctx context.Context) []string {
	if p.Apps == nil {
		return nil
	}
	running, err := p.Apps.Running(ctx)
	if err != nil {
		return nil
	}
	return running
}

// persist writes the turn's audit record exactly once, after all steps
// finished. A failed write is surfaced to the operator but never re-runs
// already-performed actions.
func (p *Pipeline) persist(turn *Turn) error {
	rec := intent.Record{
		Timestamp: time.Now(),
		RawInput:  turn.Raw,
		Plan:      turn.Plan,
		Verdict:   turn.Verdict,
		Confirmed: turn.Confirmed,
		Results:   turn.Results,
	}
	if p.Logger != nil {
		p.Logger.LogTurn(p.Session, rec)
	}
	if p.Audit == nil {
		return nil
	}
	if err := p.Audit.Append(rec); err != nil {
		return fmt.Errorf("audit: turn executed but not recorded: %w", err)
	}
	return nil
}

func declineReason(verdict intent.Verdict) string {
	if len(verdict.Warnings) > 0 {
		return fmt.Sprintf("There's nothing I can safely do here: %s.", verdict.Warnings[0])
	}
	return "That plan has no steps, so I did nothing."
}

var _ PlanGenerator = (*planner.Generator)(nil)
