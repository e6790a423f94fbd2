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
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Candidate is one Tier 1 extraction result, pre-clamping.
type Candidate struct {
	Value       float64
	Confidence  float64
	Explanation string
	Source      string
}

const (
	hoursPerWeek  = 40
	weeksPerYear  = 52
	monthsPerYear = 12
)

const (
	confPlainNumber = 0.8
	confConverted   = 0.85
	confNumberWord  = 0.75
)

var numberRe = regexp.MustCompile(`([£$€])?\s*(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)\s*([km])?\b`)

var hourlyMarkers = []string{"per hour", "an hour", "/hr", "/hour", "p/h", "hourly"}
var monthlyMarkers = []string{"per month", "a month", "/month", "monthly", "pcm"}

var numberWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// ExtractNumeric is the Tier 1 deterministic extractor. It is pure:
// the same text and schema always produce the same candidate, and it
// never calls a model.
//
// Recognition order: explicit numerals (with currency symbols,
// thousands separators and k/m suffixes, plus hourly and monthly pay
// conversion to annual figures for salary-scale schemas), then spelled
// number words, then the qualitative lexicon mapped onto the schema's
// range.
func ExtractNumeric(text string, schema Schema) (Candidate, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Candidate{}, false
	}
	lowered := strings.ToLower(trimmed)

	if c, ok := extractNumeral(lowered, schema); ok {
		return c, true
	}
	if c, ok := extractNumberWord(lowered); ok {
		return c, true
	}
	if m, ok := StandardLexicon().Match(lowered); ok {
		value := schema.Min + m.Fraction*schema.Span()
		if scaleSchema(schema) {
			value = math.Round(value)
		}
		explanation := fmt.Sprintf("Matched %q in the %s lexicon, mapping to %.4g on the %g-%g scale.",
			m.Matched, m.Category, value, schema.Min, schema.Max)
		if m.Intensified {
			explanation += " Intensifying language pushed the value toward the extreme."
		}
		return Candidate{
			Value:       value,
			Confidence:  m.Confidence,
			Explanation: explanation,
			Source:      "lexicon:" + m.Category,
		}, true
	}
	return Candidate{}, false
}

func extractNumeral(lowered string, schema Schema) (Candidate, bool) {
	m := numberRe.FindStringSubmatch(lowered)
	if m == nil {
		return Candidate{}, false
	}
	raw := strings.ReplaceAll(m[2], ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Candidate{}, false
	}

	explanation := fmt.Sprintf("Parsed the number %s from the answer.", m[2])
	confidence := confPlainNumber

	switch m[3] {
	case "k":
		value *= 1_000
		explanation = fmt.Sprintf("Parsed %sk as %g.", raw, value)
		confidence = confConverted
	case "m":
		value *= 1_000_000
		explanation = fmt.Sprintf("Parsed %sm as %g.", raw, value)
		confidence = confConverted
	}

	// Pay-period conversion only makes sense on salary-scale ranges; a
	// 1-10 urgency answer mentioning "a month" must stay untouched.
	if salarySchema(schema) {
		switch {
		case containsAny(lowered, hourlyMarkers):
			annual := value * hoursPerWeek * weeksPerYear
			explanation = fmt.Sprintf("Converted hourly rate %g to annual salary: %g * %d * %d = %g.",
				value, value, hoursPerWeek, weeksPerYear, annual)
			value = annual
			confidence = confConverted
		case containsAny(lowered, monthlyMarkers):
			annual := value * monthsPerYear
			explanation = fmt.Sprintf("Converted monthly pay %g to annual salary: %g * %d = %g.",
				value, value, monthsPerYear, annual)
			value = annual
			confidence = confConverted
		}
	}

	return Candidate{
		Value:       value,
		Confidence:  confidence,
		Explanation: explanation,
		Source:      "numeric",
	}, true
}

func extractNumberWord(lowered string) (Candidate, bool) {
	for _, field := range strings.FieldsFunc(lowered, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}) {
		if v, ok := numberWords[field]; ok {
			return Candidate{
				Value:       v,
				Confidence:  confNumberWord,
				Explanation: fmt.Sprintf("Interpreted the word %q as the number %g.", field, v),
				Source:      "number_word",
			}, true
		}
	}
	return Candidate{}, false
}

// salarySchema reports whether the range is wide enough to be a
// monetary amount rather than a rating scale.
func salarySchema(s Schema) bool { return s.Span() > 1000 }

// scaleSchema reports whether the range is a small rating scale whose
// values should land on integers.
func scaleSchema(s Schema) bool { return s.Span() <= 10 }

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
