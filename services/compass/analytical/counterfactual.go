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

// CounterfactualInput describes reasoning to challenge with
// alternative paths.
type CounterfactualInput struct {
	Reasoning   string
	Context     string
	Assumptions []string
	Variables   []string
}

// Counterfactual generates alternative reasoning paths by challenging
// assumptions and exploring what-if scenarios.
//
// Result fields on success: implicit_assumptions, alternative_paths,
// most_promising_alternative, robustness_assessment.
func (e *Engine) Counterfactual(ctx context.Context, in CounterfactualInput) (Outcome, error) {
	prompt := fmt.Sprintf(`You are an expert in counterfactual reasoning and alternative analysis. Generate alternative reasoning paths by challenging assumptions, altering variables, and exploring "what if" scenarios for the following reasoning.

# ORIGINAL REASONING
%s

# CONTEXT
%s

# EXPLICIT ASSUMPTIONS
%s

# VARIABLES THAT MAY BE ALTERED
%s

Format your response as a JSON object with this structure:
{
  "implicit_assumptions": [{"assumption": "...", "critique": "..."}],
  "alternative_paths": [{"id": "A1", "name": "...", "challenged_assumptions": ["..."], "altered_variables": ["..."], "reasoning": "...", "plausibility": "1-10", "key_differences": "...", "implications": "..."}],
  "most_promising_alternative": {"id": "...", "justification": "..."},
  "robustness_assessment": "..."
}`,
		in.Reasoning,
		section(in.Context, "No additional context provided."),
		bulleted(in.Assumptions),
		bulleted(in.Variables))

	return e.invoke(ctx, "counterfactual", prompt)
}
