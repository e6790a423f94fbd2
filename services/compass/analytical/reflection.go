// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analytical

import (
	"context"
	"fmt"
)

// ReflectionInput describes a completed reasoning trace to review.
type ReflectionInput struct {
	Task           string
	ReasoningTrace string
	Outcome        string
}

// Reflection reviews a reasoning trace for strengths, weaknesses and
// improvements, in the style of a metacognitive post-mortem.
//
// Result fields on success: strengths, weaknesses, improvements,
// overall_quality.
func (e *Engine) Reflection(ctx context.Context, in ReflectionInput) (Outcome, error) {
	prompt := fmt.Sprintf(`You are a metacognitive expert specializing in analyzing reasoning processes. Reflect on the following reasoning trace.

# ORIGINAL TASK
%s

# REASONING TRACE
%s

# OUTCOME
%s

Format your response as a JSON object with this structure:
{
  "strengths": [{"description": "...", "evidence": "...", "impact": "..."}],
  "weaknesses": [{"description": "...", "evidence": "...", "impact": "...", "type": "factual error/logical fallacy/cognitive bias/knowledge gap/process error"}],
  "improvements": [{"description": "...", "rationale": "...", "application": "..."}],
  "overall_quality": {"score": "1-10", "summary": "..."}
}`,
		in.Task,
		in.ReasoningTrace,
		section(in.Outcome, "Outcome not provided."))

	return e.invoke(ctx, "reflection", prompt)
}
