// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package meta implements the meta-reasoning controller: it tracks
// per-variable reasoning history and decides, before each additional
// model call, whether continued reasoning is worth the cost.
//
// The controller owns no model-calling logic. It is a decision
// function over history state plus a recorder. One controller is
// created per session; histories are never shared across sessions.
package meta

import (
	"fmt"
	"time"
)

// Attempt is one recorded reasoning step for a variable.
type Attempt struct {
	Response   string    `json:"response"`
	Confidence float64   `json:"confidence"`
	At         time.Time `json:"timestamp"`
}

// History tracks per-variable attempt sequences. It grows
// monotonically for its lifetime; there is no deletion. History is
// not safe for concurrent use on its own; the Controller serializes
// access.
type History struct {
	attempts map[string][]Attempt
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{attempts: make(map[string][]Attempt)}
}

// Add records one attempt for a variable.
func (h *History) Add(variable string, response any, confidence float64) {
	h.attempts[variable] = append(h.attempts[variable], Attempt{
		Response:   fmt.Sprintf("%v", response),
		Confidence: confidence,
		At:         time.Now(),
	})
}

// Count returns the number of attempts recorded for a variable.
func (h *History) Count(variable string) int {
	return len(h.attempts[variable])
}

// LastConfidence returns the most recent confidence, or 0 when the
// variable has no history.
func (h *History) LastConfidence(variable string) float64 {
	a := h.attempts[variable]
	if len(a) == 0 {
		return 0
	}
	return a[len(a)-1].Confidence
}

// LastResponse returns the most recent response text, or "".
func (h *History) LastResponse(variable string) string {
	a := h.attempts[variable]
	if len(a) == 0 {
		return ""
	}
	return a[len(a)-1].Response
}

// Similarity compares the latest response against the one before it.
// Returns 0 when fewer than two attempts exist.
func (h *History) Similarity(variable string) float64 {
	a := h.attempts[variable]
	if len(a) < 2 {
		return 0
	}
	return matchRatio(a[len(a)-2].Response, a[len(a)-1].Response)
}

// ConfidenceProgress returns the confidence delta between the last
// two attempts. The first attempt counts as full positive progress so
// it never trips the plateau check.
func (h *History) ConfidenceProgress(variable string) float64 {
	a := h.attempts[variable]
	if len(a) < 2 {
		return 1.0
	}
	return a[len(a)-1].Confidence - a[len(a)-2].Confidence
}

// Variables returns every tracked variable name.
func (h *History) Variables() []string {
	vars := make([]string, 0, len(h.attempts))
	for v := range h.attempts {
		vars = append(vars, v)
	}
	return vars
}

// TotalSteps returns the attempt count summed over all variables.
func (h *History) TotalSteps() int {
	total := 0
	for _, a := range h.attempts {
		total += len(a)
	}
	return total
}

// AverageConfidence averages the latest confidence of every tracked
// variable. Returns 0 for an empty history.
func (h *History) AverageConfidence() float64 {
	if len(h.attempts) == 0 {
		return 0
	}
	sum := 0.0
	n := 0
	for _, a := range h.attempts {
		if len(a) > 0 {
			sum += a[len(a)-1].Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
