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

// PlanningInput describes a problem to plan for.
type PlanningInput struct {
	Problem     string
	Context     string
	Constraints []string
}

// Planning produces a step-by-step plan for solving a problem.
//
// Result fields on success: plan_name, steps, reasoning,
// considerations.
func (e *Engine) Planning(ctx context.Context, in PlanningInput) (Outcome, error) {
	prompt := fmt.Sprintf(`You are a strategic planning expert. Create a detailed plan for solving the following problem.

# PROBLEM
%s

# CONTEXT
%s

# CONSTRAINTS
%s

Format your response as a JSON object with this structure:
{
  "plan_name": "...",
  "steps": [{"step_number": 1, "name": "...", "description": "...", "expected_outcome": "..."}],
  "reasoning": "...",
  "considerations": ["..."]
}`,
		in.Problem,
		section(in.Context, "No additional context provided."),
		bulleted(in.Constraints))

	return e.invoke(ctx, "planning", prompt)
}
