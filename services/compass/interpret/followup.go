// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package interpret

import "fmt"

// defaultMinSalary is the minimum-wage-equivalent annual figure
// committed when salary clarification is exhausted.
const defaultMinSalary = 20000

// NeedsFollowup reports whether an interpretation is too uncertain to
// accept.
func (p *Pipeline) NeedsFollowup(interp Interpretation) bool {
	return interp.Confidence < p.confidenceThreshold
}

// FollowupQuestion builds the schema-aware clarification question for
// a variable.
func FollowupQuestion(variable string, schema Schema) string {
	if variable == "min_salary" {
		return "Could you please provide your minimum acceptable salary as an annual figure?"
	}
	if scaleSchema(schema) {
		return fmt.Sprintf("Could you give me a number between %g and %g for %s?",
			schema.Min, schema.Max, schema.Description)
	}
	return fmt.Sprintf("Could you please provide a specific number between %g and %g?",
		schema.Min, schema.Max)
}

// DefaultInterpretation is the policy-defined value committed when the
// follow-up budget is exhausted: a minimum-wage-equivalent salary for
// min_salary, the schema minimum for everything else. Tagged as a
// default with middling confidence so downstream consumers can tell it
// apart from a real answer. The conversation always advances after
// this.
func DefaultInterpretation(variable string, schema Schema) Interpretation {
	value := schema.Min
	explanation := fmt.Sprintf("No clear answer after follow-ups; defaulting to the minimum value %g.", value)
	if variable == "min_salary" {
		value = schema.Clamp(defaultMinSalary)
		explanation = fmt.Sprintf("No clear answer after follow-ups; defaulting to a minimum-wage-equivalent salary of %g.", value)
	}
	return Interpretation{
		Variable:    variable,
		Value:       value,
		Confidence:  0.5,
		Explanation: explanation,
		IsDefault:   true,
		Source:      "default",
	}
}
