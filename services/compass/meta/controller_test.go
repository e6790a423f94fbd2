// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package meta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldContinue_InitialReasoningBeatsHighConfidence(t *testing.T) {
	c := NewController(DefaultConfig())
	c.Track("min_salary", "40000", 0.95)

	proceed, reason := c.ShouldContinue("min_salary")

	assert.True(t, proceed)
	assert.Equal(t, "Initial reasoning", reason)
}

func TestShouldContinue_ConfidenceThresholdMet(t *testing.T) {
	c := NewController(DefaultConfig())
	c.Track("min_salary", "40000", 0.4)
	c.Track("min_salary", "41600", 0.85)

	proceed, reason := c.ShouldContinue("min_salary")

	assert.False(t, proceed)
	assert.Equal(t, "Confidence threshold met", reason)
}

func TestShouldContinue_MaxAttemptsReached(t *testing.T) {
	c := NewController(DefaultConfig())
	c.Track("risk_tolerance", "low", 0.1)
	c.Track("risk_tolerance", "moderate", 0.3)
	c.Track("risk_tolerance", "fairly moderate", 0.5)

	proceed, reason := c.ShouldContinue("risk_tolerance")

	assert.False(t, proceed)
	assert.Contains(t, reason, "Maximum reasoning attempts (3)")
	assert.Contains(t, reason, "risk_tolerance")
}

func TestShouldContinue_ConfidencePlateau(t *testing.T) {
	c := NewController(DefaultConfig())
	c.Track("career_growth_weight", "around three", 0.40)
	c.Track("career_growth_weight", "probably four", 0.42)

	proceed, reason := c.ShouldContinue("career_growth_weight")

	assert.False(t, proceed)
	assert.Contains(t, reason, "Minimal confidence improvement")
}

func TestShouldContinue_CircularReasoningDetected(t *testing.T) {
	c := NewController(DefaultConfig())
	c.Track("min_salary", "the salary is about forty thousand pounds", 0.2)
	c.Track("min_salary", "the salary is about forty thousand pounds", 0.4)

	proceed, reason := c.ShouldContinue("min_salary")

	assert.False(t, proceed)
	assert.Contains(t, reason, "circular reasoning")
}

func TestShouldContinue_StillProductive(t *testing.T) {
	c := NewController(DefaultConfig())
	c.Track("min_salary", "needs more context about the role", 0.2)
	c.Track("min_salary", "UK plumber wages suggest 41600", 0.45)

	proceed, reason := c.ShouldContinue("min_salary")

	assert.True(t, proceed)
	assert.Equal(t, "Reasoning is still productive", reason)
}

func TestInterpreterConfigIsTighter(t *testing.T) {
	c := NewController(InterpreterConfig())
	c.Track("min_salary", "first pass", 0.3)
	c.Track("min_salary", "a much more detailed second answer", 0.6)

	proceed, reason := c.ShouldContinue("min_salary")

	// Two attempts is already the interpreter's cap.
	assert.False(t, proceed)
	assert.Contains(t, reason, "Maximum reasoning attempts (2)")
}

func TestMatchRatio(t *testing.T) {
	assert.Equal(t, 1.0, matchRatio("same text", "same text"))
	assert.Equal(t, 0.0, matchRatio("aaaa", "zzzz"))
	assert.Equal(t, 0.0, matchRatio("", "nonempty"))

	partial := matchRatio("the quick brown fox", "the quick red fox")
	assert.Greater(t, partial, 0.7)
	assert.Less(t, partial, 1.0)
}

func TestCounters_IncrementAndReset(t *testing.T) {
	c := NewController(DefaultConfig())
	c.Increment()
	c.Increment()
	c.ResetConsecutive()
	c.Increment()

	consecutive, total := c.Counters()
	assert.Equal(t, 1, consecutive)
	assert.Equal(t, 3, total)
}

func TestCheckAndHandle_BaseVariantWarnsButProceedsAtCap(t *testing.T) {
	c := NewController(DefaultConfig())
	for i := 0; i < 5; i++ {
		c.Increment()
	}

	assert.True(t, c.CheckAndHandle(""))
	consecutive, _ := c.Counters()
	assert.Equal(t, 5, consecutive)
}

func TestCheckAndHandle_AutomatedVariantResetsAtCap(t *testing.T) {
	c := NewController(DefaultConfig(), Automated())
	for i := 0; i < 5; i++ {
		c.Increment()
	}

	assert.True(t, c.CheckAndHandle(""))
	consecutive, total := c.Counters()
	assert.Equal(t, 0, consecutive)
	assert.Equal(t, 5, total)
}

func TestCheckAndHandle_AutoStopOnVeryLowConfidence(t *testing.T) {
	clock := time.Now()
	c := NewController(DefaultConfig(), WithClock(func() time.Time { return clock }))
	c.Track("min_salary", "no idea", 0.2)
	c.Increment()
	c.Increment()
	c.Increment()

	clock = clock.Add(6 * time.Second)

	assert.False(t, c.CheckAndHandle(""))
}

func TestCheckAndHandle_VariableStopShortCircuits(t *testing.T) {
	c := NewController(DefaultConfig())
	c.Track("min_salary", "a", 0.4)
	c.Track("min_salary", "b", 0.9)

	assert.False(t, c.CheckAndHandle("min_salary"))
}

func TestAnalyzeProcess_ThrottledToFiveSeconds(t *testing.T) {
	clock := time.Now()
	c := NewController(DefaultConfig(), WithClock(func() time.Time { return clock }))
	c.Track("min_salary", "x", 0.2)
	c.Increment()
	c.Increment()
	c.Increment()

	clock = clock.Add(6 * time.Second)
	first := c.AnalyzeProcess()
	require.NotNil(t, first)
	assert.Equal(t, "inefficient", first.Status)

	clock = clock.Add(2 * time.Second)
	assert.Nil(t, c.AnalyzeProcess())
}

func TestAnalyzeProcess_ProductiveWhenConfidenceHigh(t *testing.T) {
	clock := time.Now()
	c := NewController(DefaultConfig(), WithClock(func() time.Time { return clock }))
	c.Track("min_salary", "41600", 0.8)
	c.Track("risk_tolerance", "7", 0.7)
	c.Increment()
	c.Increment()
	c.Increment()

	clock = clock.Add(6 * time.Second)
	analysis := c.AnalyzeProcess()

	require.NotNil(t, analysis)
	assert.Equal(t, "productive", analysis.Status)
	assert.InDelta(t, 0.75, analysis.AvgConfidence, 1e-9)
}

func TestAnalyzeProcess_RequiresConsecutiveCalls(t *testing.T) {
	clock := time.Now()
	c := NewController(DefaultConfig(), WithClock(func() time.Time { return clock }))
	c.Track("min_salary", "x", 0.2)

	clock = clock.Add(6 * time.Second)
	assert.Nil(t, c.AnalyzeProcess())
}

func TestBestEstimate(t *testing.T) {
	c := NewController(DefaultConfig())
	c.Track("min_salary", "40000", 0.4)
	c.Track("min_salary", "41600", 0.6)

	response, confidence := c.BestEstimate("min_salary")
	assert.Equal(t, "41600", response)
	assert.Equal(t, 0.6, confidence)
}

func TestGate_ReportsStopReason(t *testing.T) {
	c := NewController(DefaultConfig())
	c.Track("min_salary", "a", 0.4)
	c.Track("min_salary", "b", 0.9)

	proceed, reason := c.Gate("min_salary")()
	assert.False(t, proceed)
	assert.Equal(t, "Confidence threshold met", reason)
}
