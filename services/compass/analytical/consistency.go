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

// ConsistencyInput describes content to check for contradictions.
type ConsistencyInput struct {
	Content     string
	Context     string
	Constraints []string
}

// Consistency analyzes content for internal contradictions, logical
// inconsistencies and constraint violations.
//
// Result fields on success: is_consistent, overall_assessment,
// contradictions, unclear_statements, constraint_violations.
func (e *Engine) Consistency(ctx context.Context, in ConsistencyInput) (Outcome, error) {
	prompt := fmt.Sprintf(`You are a logical consistency expert with exceptional attention to detail. Analyze the following content for internal contradictions, logical inconsistencies, and coherence issues.

# CONTENT TO EVALUATE
%s

# CONTEXT
%s

# CONSTRAINTS THAT MUST HOLD
%s

Format your response as a JSON object with this structure:
{
  "is_consistent": true,
  "overall_assessment": "...",
  "contradictions": [{"statements": ["...", "..."], "explanation": "...", "severity": "critical/major/minor"}],
  "unclear_statements": [{"statement": "...", "issue": "...", "possible_interpretations": ["..."]}],
  "constraint_violations": [{"constraint": "...", "violation": "...", "location": "..."}]
}`,
		in.Content,
		section(in.Context, "No additional context provided."),
		bulleted(in.Constraints))

	return e.invoke(ctx, "consistency", prompt)
}
