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

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianCompass/services/compass/tools"
)

// roleSalary holds baseline annual figures in GBP for common fields.
// Deliberately coarse: the numbers anchor the model's reasoning, they
// are not market data.
var roleSalaries = map[string]float64{
	"software":    32000,
	"engineering": 32000,
	"developer":   32000,
	"data":        30000,
	"nursing":     27000,
	"nurse":       27000,
	"teaching":    28000,
	"teacher":     28000,
	"plumber":     29000,
	"plumbing":    29000,
	"electrician": 30000,
	"retail":      21000,
	"hospitality": 20500,
	"finance":     33000,
	"marketing":   26000,
}

const defaultRoleSalary = 24000

// minimum-wage-equivalent annual figure used as the floor reference.
const minimumWageAnnual = 20000

var regionAdjustments = map[string]float64{
	"london":        1.25,
	"new york":      1.30,
	"san francisco": 1.35,
	"bristol":       1.05,
	"manchester":    1.0,
	"remote":        1.0,
}

// RegisterInterpreterTools adds the Tier 2 interpretation tools to a
// registry: extract_salary_by_role and interpret_importance. Both are
// deterministic so reasoning runs stay reproducible in tests.
func RegisterInterpreterTools(reg *tools.Registry) {
	reg.Register(tools.Spec{
		Name:        "extract_salary_by_role",
		Description: "Estimate a typical annual salary for a given role or job field, optionally adjusted for a region.",
		Params: []tools.Param{
			{Name: "role", Required: true, Description: "The role or job field, e.g. 'plumber' or 'software engineering'."},
			{Name: "region", Required: false, Description: "City or region for cost-of-living adjustment."},
		},
	}, func(_ context.Context, input map[string]any) (any, error) {
		role, _ := input["role"].(string)
		region, _ := input["region"].(string)
		return estimateSalaryByRole(role, region), nil
	})

	reg.Register(tools.Spec{
		Name:        "interpret_importance",
		Description: "Map a qualitative statement of importance or preference onto a numeric scale.",
		Params: []tools.Param{
			{Name: "text", Required: true, Description: "The user's statement to interpret."},
			{Name: "scale_min", Required: false, Description: "Lower bound of the scale (default 1)."},
			{Name: "scale_max", Required: false, Description: "Upper bound of the scale (default 5)."},
		},
	}, func(_ context.Context, input map[string]any) (any, error) {
		text, _ := input["text"].(string)
		lo := floatParam(input, "scale_min", 1)
		hi := floatParam(input, "scale_max", 5)
		if hi <= lo {
			return nil, fmt.Errorf("scale_max must exceed scale_min")
		}
		return interpretImportance(text, lo, hi), nil
	})
}

func estimateSalaryByRole(role, region string) map[string]any {
	base := float64(defaultRoleSalary)
	matched := "general entry-level"
	if key := longestMatch(roleSalaries, strings.ToLower(role)); key != "" {
		base = roleSalaries[key]
		matched = key
	}
	if base < minimumWageAnnual {
		base = minimumWageAnnual
	}

	factor := 1.0
	regionNote := ""
	if key := longestMatch(regionAdjustments, strings.ToLower(region)); key != "" {
		factor = regionAdjustments[key]
		regionNote = fmt.Sprintf(" adjusted by %.2f for %s", factor, key)
	}

	salary := base * factor
	return map[string]any{
		"salary":     salary,
		"confidence": 0.75,
		"reasoning": fmt.Sprintf("Baseline for %s roles is %.0f%s, giving %.0f annually.",
			matched, base, regionNote, salary),
	}
}

// longestMatch finds the table key contained in text, preferring the
// most specific (longest) key and breaking length ties by sorted
// order, so lookups stay stable across runs.
func longestMatch(table map[string]float64, text string) string {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	best := ""
	for _, key := range keys {
		if strings.Contains(text, key) && len(key) > len(best) {
			best = key
		}
	}
	return best
}

func interpretImportance(text string, lo, hi float64) map[string]any {
	schema := Schema{Key: "importance", Type: "number", Min: lo, Max: hi}
	if m, ok := StandardLexicon().Match(text); ok {
		value := schema.Clamp(lo + m.Fraction*(hi-lo))
		if scaleSchema(schema) {
			value = float64(int(value + 0.5))
		}
		return map[string]any{
			"value":      value,
			"confidence": m.Confidence,
			"reasoning":  fmt.Sprintf("Matched %q, mapping to %g on the %g-%g scale.", m.Matched, value, lo, hi),
		}
	}
	mid := (lo + hi) / 2
	return map[string]any{
		"value":      mid,
		"confidence": 0.4,
		"reasoning":  fmt.Sprintf("No qualitative signal found; defaulting to the midpoint %g.", mid),
	}
}

func floatParam(input map[string]any, key string, fallback float64) float64 {
	switch v := input[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f
		}
	}
	return fallback
}
