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
	"fmt"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianCompass/services/llm"
)

const cotPreamble = `Think through the following question step by step, then give your answer.

End your response with:

Answer: your final answer`

// ChainOfThought is the tool-free single-call variant: one prompt, one
// response, no action loop. Used where tool access adds nothing.
type ChainOfThought struct {
	client llm.LLMClient
	params llm.GenerationParams
}

// NewChainOfThought builds the single-call reasoner.
func NewChainOfThought(client llm.LLMClient, params llm.GenerationParams) *ChainOfThought {
	return &ChainOfThought{client: client, params: params}
}

// Run issues one reasoning call and records it as a one-step trace so
// downstream consumers handle both variants uniformly.
func (c *ChainOfThought) Run(ctx context.Context, query, contextText string) (*Trace, error) {
	trace := &Trace{
		Query:     query,
		State:     StateRunning,
		StartedAt: time.Now(),
	}

	var b strings.Builder
	b.WriteString(cotPreamble)
	if contextText != "" {
		b.WriteString("\n\nContext:\n")
		b.WriteString(contextText)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(query)

	response, err := c.client.Generate(ctx, b.String(), c.params)
	if err != nil {
		trace.State = StateExhausted
		trace.StoppingReason = StopError
		trace.FinishedAt = time.Now()
		return trace, fmt.Errorf("chain-of-thought call failed: %w", err)
	}

	trace.Iterations = 1
	parsed := Parse(response)
	step := Step{Iteration: 1, Thought: parsed.Thought, IsFinal: true}
	if parsed.HasAnswer {
		step.Action = &Action{Name: "answer", Input: parsed.Answer}
		step.Observation = "Answer provided."
		trace.Answer = parsed.Answer
		trace.Answered = true
		trace.StoppingReason = StopAnswerFound
	} else {
		// The whole response stands in for the answer when the model
		// skipped the label.
		trace.Answer = strings.TrimSpace(response)
		trace.Answered = trace.Answer != ""
		if trace.Answered {
			trace.StoppingReason = StopAnswerFound
		} else {
			trace.StoppingReason = StopMaxIterations
		}
	}
	trace.Steps = append(trace.Steps, step)
	trace.State = StateAnswered
	if !trace.Answered {
		trace.State = StateExhausted
	}
	trace.FinishedAt = time.Now()
	return trace, nil
}
