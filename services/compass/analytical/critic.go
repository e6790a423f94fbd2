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

// CriticInput describes a plan or solution to evaluate.
type CriticInput struct {
	Plan     string
	Context  string
	Criteria []string
}

// Critic evaluates a plan or solution for strengths, weaknesses and
// concrete improvements.
//
// Result fields on success: strengths, weaknesses, suggestions,
// overall_assessment.
func (e *Engine) Critic(ctx context.Context, in CriticInput) (Outcome, error) {
	prompt := fmt.Sprintf(`You are an expert critic with exceptional analytical skills. Critically evaluate the following plan or solution.

# PLAN/SOLUTION TO EVALUATE
%s

# CONTEXT
%s

# EVALUATION CRITERIA
%s

Format your response as a JSON object with this structure:
{
  "strengths": [{"description": "...", "impact": "..."}],
  "weaknesses": [{"description": "...", "impact": "...", "severity": "High/Medium/Low"}],
  "suggestions": [{"description": "...", "rationale": "...", "implementation_notes": "..."}],
  "overall_assessment": {"score": "1-10", "summary": "..."}
}`,
		in.Plan,
		section(in.Context, "No additional context provided."),
		bulleted(in.Criteria))

	return e.invoke(ctx, "critic", prompt)
}
