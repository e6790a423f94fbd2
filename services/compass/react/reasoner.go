// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package react

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianCompass/services/compass/tools"
	"github.com/AleutianAI/AleutianCompass/services/llm"
)

var tracer = otel.Tracer("compass.react")

const (
	// DefaultMaxIterations bounds a run when no override is given.
	DefaultMaxIterations = 5

	noActionObservation = "No action was taken. Please specify a valid action or provide an answer."
)

// Reasoner drives the ReAct loop against a model port. Construct one
// per logical reasoner (interpreters share one per variable type) and
// reuse it; the tool registry is supplied per call so callers can vary
// the toolset between runs.
type Reasoner struct {
	client            llm.LLMClient
	name              string
	maxIterations     int
	stopAtAnswer      bool
	finalAnswerPrompt bool
	params            llm.GenerationParams
	onStep            StepCallback
	gate              Gate
	log               *slog.Logger
}

// Option configures a Reasoner.
type Option func(*Reasoner)

// WithName sets the reasoner name used in logs and provenance tags.
func WithName(name string) Option {
	return func(r *Reasoner) { r.name = name }
}

// WithMaxIterations overrides the iteration budget.
func WithMaxIterations(n int) Option {
	return func(r *Reasoner) {
		if n > 0 {
			r.maxIterations = n
		}
	}
}

// WithStopAtAnswer controls whether the loop ends as soon as the model
// emits an answer (default true). When false the loop keeps running
// and the last answer wins.
func WithStopAtAnswer(stop bool) Option {
	return func(r *Reasoner) { r.stopAtAnswer = stop }
}

// WithFinalAnswerPrompt enables one extra "best answer now" model call
// when the budget is exhausted without an answer. The extra call does
// not count as an iteration and the stopping reason remains
// max_iterations_reached.
func WithFinalAnswerPrompt(enable bool) Option {
	return func(r *Reasoner) { r.finalAnswerPrompt = enable }
}

// WithGenerationParams sets the sampling parameters for every call.
func WithGenerationParams(p llm.GenerationParams) Option {
	return func(r *Reasoner) { r.params = p }
}

// WithStepCallback registers a callback invoked after each recorded
// step, for streaming step events to clients.
func WithStepCallback(cb StepCallback) Option {
	return func(r *Reasoner) { r.onStep = cb }
}

// WithGate installs a pre-call gate, normally the meta-reasoning
// controller's ShouldContinue check.
func WithGate(g Gate) Option {
	return func(r *Reasoner) { r.gate = g }
}

// WithLogger overrides the default slog logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Reasoner) { r.log = log }
}

// NewReasoner builds a Reasoner with the given model port and options.
func NewReasoner(client llm.LLMClient, opts ...Option) *Reasoner {
	r := &Reasoner{
		client:        client,
		name:          "react",
		maxIterations: DefaultMaxIterations,
		stopAtAnswer:  true,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("reasoner", r.name)
	return r
}

// Name returns the reasoner's provenance name.
func (r *Reasoner) Name() string { return r.name }

// Run executes the reasoning loop for one query.
//
// Description:
//
//	Each iteration builds a prompt from the query, optional context and
//	the transcript so far, calls the model, parses the response, and
//	either records the answer, executes the requested tool, or records
//	a placeholder observation when the model did neither. Tool failures
//	of every kind become observations the model can react to; only
//	model-port failures terminate the run.
//
// Inputs:
//   - ctx: cancellation aborts between model calls.
//   - query: the question to reason about.
//   - contextText: optional background prepended to every prompt.
//   - registry: the toolset for this run; may be empty but not nil.
//
// Outputs:
//   - *Trace: always non-nil, recording every step taken, including
//     partial progress when an error terminated the run.
//   - error: non-nil only when the run ended with stopping reason
//     "error" (model port failure or context cancellation).
func (r *Reasoner) Run(ctx context.Context, query, contextText string, registry *tools.Registry) (*Trace, error) {
	ctx, span := tracer.Start(ctx, "react.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("react.reasoner", r.name),
		attribute.Int("react.max_iterations", r.maxIterations),
	)

	trace := &Trace{
		Query:     query,
		State:     StateRunning,
		StartedAt: time.Now(),
	}
	system := buildSystemPrompt(registry.Specs())

	for trace.Iterations < r.maxIterations && trace.State == StateRunning {
		if err := ctx.Err(); err != nil {
			return r.fail(trace, fmt.Errorf("reasoning cancelled: %w", err))
		}
		if r.gate != nil {
			if proceed, reason := r.gate(); !proceed {
				r.log.Info("gate stopped run", "reason", reason, "iteration", trace.Iterations)
				trace.State = StateExhausted
				if trace.Answered {
					trace.StoppingReason = StopAnswerFound
				} else {
					trace.StoppingReason = StopGateDenied
				}
				break
			}
		}

		prompt := system + "\n\n" + buildStepPrompt(query, contextText, trace.Steps)
		response, err := r.client.Generate(ctx, prompt, r.params)
		if err != nil {
			return r.fail(trace, fmt.Errorf("model call failed at iteration %d: %w", trace.Iterations, err))
		}

		trace.Iterations++
		parsed := Parse(response)
		step := Step{
			Iteration: trace.Iterations,
			Thought:   parsed.Thought,
		}

		switch {
		case parsed.HasAnswer:
			step.Action = &Action{Name: "answer", Input: parsed.Answer}
			step.Observation = "Answer provided."
			step.IsFinal = true
			trace.Answer = parsed.Answer
			trace.Answered = true
			if r.stopAtAnswer {
				trace.State = StateAnswered
				trace.StoppingReason = StopAnswerFound
			}
		case parsed.HasAction:
			step.Action = &Action{Name: parsed.ActionName, Input: parsed.ActionInput}
			step.Observation = r.executeAction(ctx, registry, parsed.ActionName, parsed.ActionInput)
		default:
			step.Observation = noActionObservation
		}

		r.record(trace, step)
	}

	if trace.State == StateRunning {
		trace.State = StateExhausted
		if trace.Answered {
			// stopAtAnswer=false runs keep the last answer emitted.
			trace.StoppingReason = StopAnswerFound
		} else {
			trace.StoppingReason = StopMaxIterations
			if r.finalAnswerPrompt {
				r.requestFinalAnswer(ctx, trace, query)
			}
		}
	}
	trace.FinishedAt = time.Now()
	span.SetAttributes(
		attribute.Int("react.iterations", trace.Iterations),
		attribute.String("react.stopping_reason", string(trace.StoppingReason)),
	)
	r.log.Info("reasoning finished",
		"iterations", trace.Iterations,
		"state", trace.State,
		"stopping_reason", trace.StoppingReason,
		"answered", trace.Answered)
	return trace, nil
}

// executeAction runs one tool call and renders the observation text.
// Misuse errors (unknown tool, missing parameter) and handler failures
// are all folded into the observation so the model can correct itself.
func (r *Reasoner) executeAction(ctx context.Context, registry *tools.Registry, name string, input any) string {
	result, err := registry.Execute(ctx, name, bindInput(registry, name, input))
	if err != nil {
		r.log.Warn("tool misuse", "tool", name, "error", err)
		return fmt.Sprintf("Error executing action %s: %s", name, err.Error())
	}
	if result.Failed() {
		return fmt.Sprintf("Error executing action %s: %s", name, result.Err)
	}
	return formatObservation(result.Value)
}

// bindInput coerces the parsed action input into the map shape the
// executor expects. A bare string is bound to the tool's sole
// parameter when the tool has exactly one; anything else unbindable
// becomes an empty map and surfaces as a missing-parameter error.
func bindInput(registry *tools.Registry, name string, input any) map[string]any {
	switch v := input.(type) {
	case map[string]any:
		return v
	case nil:
		return map[string]any{}
	case string:
		for _, spec := range registry.Specs() {
			if spec.Name == name && len(spec.Params) == 1 {
				return map[string]any{spec.Params[0].Name: v}
			}
		}
		return map[string]any{}
	default:
		return map[string]any{}
	}
}

// requestFinalAnswer issues the post-exhaustion best-effort prompt.
// Failures here are logged and swallowed: the run already has a
// terminal state and partial trace worth returning.
func (r *Reasoner) requestFinalAnswer(ctx context.Context, trace *Trace, query string) {
	response, err := r.client.Generate(ctx, buildFinalAnswerPrompt(query, trace.Steps), r.params)
	if err != nil {
		r.log.Warn("final answer prompt failed", "error", err)
		return
	}
	parsed := Parse(response)
	answer := parsed.Answer
	if !parsed.HasAnswer {
		answer = parsed.Thought
	}
	if answer == "" {
		return
	}
	trace.Answer = answer
	trace.Answered = true
	step := Step{
		Iteration:   trace.Iterations,
		Thought:     parsed.Thought,
		Action:      &Action{Name: "answer", Input: answer},
		Observation: "Best-effort answer after exhausting iterations.",
		IsFinal:     true,
	}
	r.record(trace, step)
}

func (r *Reasoner) record(trace *Trace, step Step) {
	trace.Steps = append(trace.Steps, step)
	r.log.Debug("step recorded",
		"iteration", step.Iteration,
		"has_action", step.Action != nil,
		"is_final", step.IsFinal)
	if r.onStep != nil {
		r.onStep(step)
	}
}

// fail finalizes the trace with the error stopping reason. The partial
// trace is preserved so callers can surface it alongside the error.
func (r *Reasoner) fail(trace *Trace, err error) (*Trace, error) {
	trace.State = StateExhausted
	trace.StoppingReason = StopError
	trace.FinishedAt = time.Now()
	if errors.Is(err, llm.ErrModelUnavailable) {
		r.log.Error("model unavailable", "error", err, "iterations", trace.Iterations)
	} else {
		r.log.Error("reasoning aborted", "error", err, "iterations", trace.Iterations)
	}
	return trace, err
}

// formatObservation renders a tool result for the transcript. Scalars
// print bare; composite values are JSON so the model sees structure.
func formatObservation(value any) string {
	switch v := value.(type) {
	case nil:
		return "(no result)"
	case string:
		return v
	case float64:
		return trimFloat(v)
	case int, int64, bool:
		return fmt.Sprintf("%v", v)
	default:
		if raw, err := json.Marshal(v); err == nil {
			return string(raw)
		}
		return fmt.Sprintf("%v", v)
	}
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
