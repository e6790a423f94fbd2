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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianCompass/services/compass/tools"
)

const systemPreamble = `You are a reasoning agent that solves problems step by step.

For each step, respond in exactly this format:

Thought: your reasoning about what to do next
Action: the name of ONE tool to use, or "none"
Action Input: the input for the tool as a JSON object

When you know the final answer, respond with:

Thought: your final reasoning
Answer: the final answer

Rules:
- Use only the tools listed below.
- Provide Action Input as a JSON object matching the tool's parameters.
- Do not invent observations; they will be provided to you.
- Give an Answer as soon as you are confident.`

// buildSystemPrompt renders the fixed instructions plus the tool
// catalog for this run.
func buildSystemPrompt(specs []tools.Spec) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\nAvailable tools:\n")
	if len(specs) == 0 {
		b.WriteString("(none)\n")
		return b.String()
	}
	for _, s := range specs {
		fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.Description)
		for _, p := range s.Params {
			req := "optional"
			if p.Required {
				req = "required"
			}
			fmt.Fprintf(&b, "    %s (%s): %s\n", p.Name, req, p.Description)
		}
	}
	return b.String()
}

// buildStepPrompt renders the query, any caller-supplied context, and
// the Thought/Action/Observation transcript so far.
func buildStepPrompt(query, contextText string, steps []Step) string {
	var b strings.Builder
	if contextText != "" {
		b.WriteString("Context:\n")
		b.WriteString(contextText)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n")
	for _, s := range steps {
		fmt.Fprintf(&b, "\nThought: %s", s.Thought)
		if s.Action != nil && s.Action.Name != "answer" {
			fmt.Fprintf(&b, "\nAction: %s", s.Action.Name)
			fmt.Fprintf(&b, "\nAction Input: %s", formatActionInput(s.Action.Input))
		}
		if s.Observation != "" {
			fmt.Fprintf(&b, "\nObservation: %s", s.Observation)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nContinue with your next Thought.")
	return b.String()
}

// buildFinalAnswerPrompt asks for a best-effort answer after the
// iteration budget is exhausted.
func buildFinalAnswerPrompt(query string, steps []Step) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n")
	for _, s := range steps {
		fmt.Fprintf(&b, "\nThought: %s", s.Thought)
		if s.Observation != "" {
			fmt.Fprintf(&b, "\nObservation: %s", s.Observation)
		}
	}
	b.WriteString("\n\nYou are out of reasoning steps. Based on the work above, give your best final answer now.\nRespond with:\n\nAnswer: your best answer")
	return b.String()
}

func formatActionInput(input any) string {
	switch v := input.(type) {
	case nil:
		return "{}"
	case string:
		return v
	default:
		if raw, err := json.Marshal(v); err == nil {
			return string(raw)
		}
		return fmt.Sprintf("%v", v)
	}
}
