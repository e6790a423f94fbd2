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

// EPRInput describes an observation to explain, predict from, and
// refine hypotheses about.
type EPRInput struct {
	Observation     string
	Context         string
	PriorHypotheses []string
	Evidence        []string
}

// EPR runs the Explanation-Prediction-Refinement process: formulate
// competing hypotheses for an observation, derive testable predictions
// from each, and refine against the supplied evidence. Multiple
// competing hypotheses are required to counter confirmation bias.
//
// Result fields on success: hypotheses, predictions, evaluation,
// refined_hypotheses.
func (e *Engine) EPR(ctx context.Context, in EPRInput) (Outcome, error) {
	prompt := fmt.Sprintf(`You are an expert in systematic critical thinking using the Explanation-Prediction-Refinement process. Formulate multiple competing hypotheses that could explain the observation, derive testable predictions from each, then evaluate and refine the hypotheses against the evidence.

# OBSERVATION
%s

# CONTEXT
%s

# PRIOR HYPOTHESES
%s

# NEW EVIDENCE
%s

Format your response as a JSON object with this structure:
{
  "hypotheses": [{"id": "H1", "statement": "...", "plausibility": "1-10", "rationale": "..."}],
  "predictions": [{"hypothesis_id": "H1", "prediction": "...", "testability": "High/Medium/Low"}],
  "evaluation": [{"hypothesis_id": "H1", "supporting_evidence": ["..."], "contradicting_evidence": ["..."], "verdict": "supported/weakened/inconclusive"}],
  "refined_hypotheses": [{"id": "H1", "statement": "...", "changes": "..."}]
}`,
		in.Observation,
		section(in.Context, "No additional context provided."),
		bulleted(in.PriorHypotheses),
		bulleted(in.Evidence))

	return e.invoke(ctx, "epr", prompt)
}
