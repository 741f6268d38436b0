// Package planner is the boundary to the external plan generator: a
// language model asked, via a single function-call tool, to turn raw text
// into a structured plan. Its output is untrusted; the safety gate alone
// decides what may run.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/rahul/nexus/internal/intent"
	"github.com/rahul/nexus/internal/observability"
)

// ErrGeneration marks a malformed or unparseable plan from the model. The
// pipeline treats it as a rejected plan: recorded, never executed.
var ErrGeneration = errors.New("planner: model produced no usable plan")

type Generator struct {
	Model   llms.Model
	Prompts *Pack
	Logger  *observability.Logger
}

func NewGenerator(model llms.Model, prompts *Pack, logger *observability.Logger) *Generator {
	return &Generator{Model: model, Prompts: prompts, Logger: logger}
}

func planTools() []llms.Tool {
	kinds := make([]string, 0, len(intent.Kinds()))
	for _, k := range intent.Kinds() {
		kinds = append(kinds, string(k))
	}

	return []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "propose_plan",
				Description: "Submit the structured plan for this turn: the mode, a one-sentence narrative, and the ordered action steps.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"mode": map[string]any{
							"type": "string",
							"enum": []string{string(intent.ModeChat), string(intent.ModeAction)},
						},
						"plan": map[string]any{
							"type":        "string",
							"description": "One human-readable sentence describing what will happen.",
						},
						"steps": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"intent": map[string]any{
										"type": "string",
										"enum": kinds,
									},
									"args": map[string]any{
										"type": "object",
									},
								},
								"required": []string{"intent"},
							},
						},
					},
					"required": []string{"mode", "plan"},
				},
			},
		},
	}
}

// Plan asks the model for this turn's plan. History entries and the running
// app list are context only; nothing in them bypasses validation.
func (g *Generator) Plan(ctx context.Context, raw string, history []string, runningApps []string) (intent.Plan, error) {
	system := g.Prompts.Planner()
	if len(runningApps) > 0 {
		system += "\n\nRunning apps: " + strings.Join(runningApps, ", ")
	}
	if len(history) > 0 {
		system += "\n\nRecent conversation:\n" + strings.Join(history, "\n")
	}

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextPart(system)}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextPart(raw)}},
	}

	resp, err := g.Model.GenerateContent(ctx, messages, llms.WithTools(planTools()))
	if err != nil {
		return intent.Plan{}, fmt.Errorf("planner: %w", err)
	}
	if len(resp.Choices) == 0 {
		return intent.Plan{}, ErrGeneration
	}
	choice := resp.Choices[0]

	if g.Logger != nil {
		g.Logger.LogLLM("plan", raw, choice.Content, choice.ToolCalls)
	}

	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil || tc.FunctionCall.Name != "propose_plan" {
			continue
		}
		plan, err := decodePlan(tc.FunctionCall.Arguments)
		if err != nil {
			return intent.Plan{}, fmt.Errorf("%w: %v", ErrGeneration, err)
		}
		return plan, nil
	}

	// A plain text answer is a valid chat turn.
	if strings.TrimSpace(choice.Content) != "" {
		return intent.Plan{Mode: intent.ModeChat, Narrative: choice.Content}, nil
	}

	return intent.Plan{}, ErrGeneration
}

type wirePlan struct {
	Mode  string     `json:"mode"`
	Plan  string     `json:"plan"`
	Steps []wireStep `json:"steps"`
}

type wireStep struct {
	Intent string         `json:"intent"`
	Args   map[string]any `json:"args"`
}

// decodePlan strictly parses the tool payload. Unknown intent names map to
// the UNKNOWN sentinel and fail at the safety gate, not here; a shape the
// wire struct cannot hold is a generation error.
func decodePlan(payload string) (intent.Plan, error) {
	var wire wirePlan
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return intent.Plan{}, err
	}

	steps := make([]intent.Step, 0, len(wire.Steps))
	for _, ws := range wire.Steps {
		args := make(map[string]string, len(ws.Args))
		for k, v := range ws.Args {
			args[k] = fmt.Sprintf("%v", v)
		}
		steps = append(steps, intent.Step{Kind: intent.ParseKind(ws.Intent), Args: args})
	}

	switch strings.ToUpper(strings.TrimSpace(wire.Mode)) {
	case string(intent.ModeChat):
		// Chat never carries steps; anything attached is discarded unseen
		// rather than executed unconfirmed.
		return intent.Plan{Mode: intent.ModeChat, Narrative: wire.Plan}, nil
	case string(intent.ModeAction):
		return intent.Plan{Mode: intent.ModeAction, Narrative: wire.Plan, Steps: steps}, nil
	default:
		if len(steps) == 0 {
			return intent.Plan{Mode: intent.ModeChat, Narrative: wire.Plan}, nil
		}
		return intent.Plan{}, fmt.Errorf("unrecognized mode %q with steps attached", wire.Mode)
	}
}

// Respond is the chat lane: a plain completion that never runs anything.
func (g *Generator) Respond(ctx context.Context, raw string, history []string) (string, error) {
	system := g.Prompts.Persona()
	if len(history) > 0 {
		system += "\n\nRecent conversation:\n" + strings.Join(history, "\n")
	}

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextPart(system)}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextPart(raw)}},
	}

	resp, err := g.Model.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("planner: chat response: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", ErrGeneration
	}
	return resp.Choices[0].Content, nil
}

// Narrate phrases the turn's results as one conversational reply. A model
// failure falls back to a deterministic summary so reporting never depends
// on a second generation succeeding.
func (g *Generator) Narrate(ctx context.Context, raw string, results []intent.StepResult) string {
	if len(results) == 0 {
		return "Nothing was executed."
	}

	var outcome strings.Builder
	for _, r := range results {
		fmt.Fprintf(&outcome, "- %s %s: %s\n", r.Step.Kind, r.Status, r.Detail)
	}

	system := g.Prompts.Persona() + "\n\n" +
		"Report the step outcomes below in one or two short sentences. " +
		"Never claim an action succeeded unless its status is success; " +
		"if something failed, say so plainly."

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextPart(system)}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{
			llms.TextPart(fmt.Sprintf("USER REQUEST:\n%s\n\nSTEP OUTCOMES:\n%s", raw, outcome.String())),
		}},
	}

	resp, err := g.Model.GenerateContent(ctx, messages)
	if err == nil && len(resp.Choices) > 0 && strings.TrimSpace(resp.Choices[0].Content) != "" {
		return strings.TrimSpace(resp.Choices[0].Content)
	}
	return Summarize(results)
}

// Summarize is the deterministic fallback narration.
func Summarize(results []intent.StepResult) string {
	var succeeded, failed int
	var details []string
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		} else {
			failed++
		}
		if r.Detail != "" {
			details = append(details, r.Detail)
		}
	}

	head := fmt.Sprintf("Done: %d of %d steps succeeded.", succeeded, succeeded+failed)
	if failed == 0 {
		head = "Done."
	}
	if len(details) == 0 {
		return head
	}
	return head + " " + strings.Join(details, " ")
}
