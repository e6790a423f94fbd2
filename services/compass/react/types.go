// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package react implements the Thought-Action-Observation reasoning
// loop (ReAct) plus a single-shot Chain-of-Thought variant.
//
// The loop alternates between asking the model for its next step,
// executing any tool action the model requests, and feeding the result
// back as an observation, until the model produces an answer or the
// iteration budget runs out.
//
// Thread Safety:
//
//	A Reasoner is immutable after construction and safe for concurrent
//	Run calls; each Run owns its Trace.
package react

import (
	"time"
)

// State is a state of the reasoning loop state machine.
type State string

const (
	// StateRunning means the loop is still producing steps.
	StateRunning State = "RUNNING"

	// StateAnswered means the model produced a final answer.
	StateAnswered State = "ANSWERED"

	// StateExhausted means the iteration budget ran out.
	StateExhausted State = "EXHAUSTED"
)

// IsTerminal returns true for ANSWERED and EXHAUSTED.
func (s State) IsTerminal() bool {
	return s == StateAnswered || s == StateExhausted
}

// StoppingReason explains why a run terminated.
type StoppingReason string

const (
	// StopAnswerFound means the model emitted an answer.
	StopAnswerFound StoppingReason = "answer_found"

	// StopMaxIterations means the iteration cap was hit without an answer.
	StopMaxIterations StoppingReason = "max_iterations_reached"

	// StopGateDenied means the pre-call gate refused another model call
	// before the iteration cap was reached.
	StopGateDenied StoppingReason = "gate_stopped"

	// StopError means the model port failed terminally mid-run.
	StopError StoppingReason = "error"
)

// Action is a tool invocation requested by the model.
type Action struct {
	// Name is the tool name, or the pseudo-names "answer" / "none".
	Name string `json:"name"`

	// Input is the tool input: a map when the model emitted JSON,
	// otherwise the literal string it produced.
	Input any `json:"input"`
}

// Step is one Thought-Action-Observation cycle. Steps are append-only
// and immutable once recorded on a trace.
type Step struct {
	Iteration   int     `json:"iteration"`
	Thought     string  `json:"thought"`
	Action      *Action `json:"action,omitempty"`
	Observation string  `json:"observation"`
	IsFinal     bool    `json:"is_final"`
}

// Trace is the complete record of one reasoning run. It is mutated
// step-by-step while the run is live and finalized (never touched
// again) once a terminal state is reached.
type Trace struct {
	Query          string         `json:"query"`
	Steps          []Step         `json:"steps"`
	Iterations     int            `json:"iterations"`
	State          State          `json:"state"`
	StoppingReason StoppingReason `json:"stopping_reason"`
	Answer         string         `json:"answer,omitempty"`
	Answered       bool           `json:"answered"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
}

// LastObservation returns the observation of the most recent step, or
// "" when no steps exist. Used by the interpretation pipeline to
// salvage tool output when the final answer is degenerate.
func (t *Trace) LastObservation() string {
	for i := len(t.Steps) - 1; i >= 0; i-- {
		if t.Steps[i].Action != nil && t.Steps[i].Action.Name != "answer" && t.Steps[i].Observation != "" {
			return t.Steps[i].Observation
		}
	}
	return ""
}

// StepCallback receives each step as it is recorded, for streaming
// consumers. Callbacks run synchronously on the loop goroutine and
// should return quickly.
type StepCallback func(step Step)

// Gate is consulted before each model call. Returning false stops the
// run before spending another call; the reason is logged. The
// meta-reasoning controller provides the production implementation.
type Gate func() (proceed bool, reason string)
