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

// CausalInput describes content to analyze for cause-effect structure.
type CausalInput struct {
	Content         string
	Context         string
	FocusVariables  []string
	DomainKnowledge string
}

// Causal identifies cause-effect relationships and causal chains,
// distinguishing correlation from causation.
//
// Result fields on success: causal_factors, causal_chains,
// potential_confounders, suggested_interventions.
func (e *Engine) Causal(ctx context.Context, in CausalInput) (Outcome, error) {
	prompt := fmt.Sprintf(`You are an expert in causal reasoning and causal inference. Analyze cause-effect relationships and causal chains in the following content, and distinguish correlation from causation.

# CONTENT TO ANALYZE
%s

# CONTEXT
%s

# FOCUS VARIABLES
%s

# DOMAIN KNOWLEDGE
%s

Format your response as a JSON object with this structure:
{
  "causal_factors": [{"factor": "...", "type": "cause/effect/both", "evidence_strength": "Strong/Moderate/Weak", "evidence_basis": "..."}],
  "causal_chains": [{"id": "C1", "description": "...", "chain": ["A -> B -> C"], "confidence": "1-10", "key_mechanisms": "..."}],
  "potential_confounders": [{"confounder": "...", "affects": ["..."], "explanation": "..."}],
  "suggested_interventions": [{"intervention": "...", "target": "...", "expected_effect": "..."}]
}`,
		in.Content,
		section(in.Context, "No additional context provided."),
		bulleted(in.FocusVariables),
		section(in.DomainKnowledge, "No domain knowledge provided."))

	return e.invoke(ctx, "causal", prompt)
}
