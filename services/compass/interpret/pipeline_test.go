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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCompass/services/llm"
)

func salaryRequest(answers ...string) Request {
	return Request{
		Variable:  "min_salary",
		Question:  "What is the minimum salary you would accept?",
		Responses: answers,
		Schema:    StandardSchemas()["min_salary"],
		JobField:  "plumbing",
	}
}

func TestInterpret_Tier1SettlesWithoutModelCall(t *testing.T) {
	client := &llm.MockClient{}
	p := NewPipeline(client)

	interp, err := p.Interpret(context.Background(), salaryRequest("£20 per hour"))

	require.NoError(t, err)
	assert.Equal(t, 41600.0, interp.Value)
	assert.GreaterOrEqual(t, interp.Confidence, 0.8)
	assert.False(t, interp.IsDefault)
	assert.True(t, strings.HasPrefix(interp.Source, "tier1"))
	assert.Equal(t, 0, client.Calls())
}

func TestInterpret_Tier1ClampsToSchema(t *testing.T) {
	p := NewPipeline(&llm.MockClient{})

	interp, err := p.Interpret(context.Background(), salaryRequest("600k"))

	require.NoError(t, err)
	assert.Equal(t, 500000.0, interp.Value)
}

func TestInterpret_Tier2UsesToolResult(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		"Thought: they named a trade, not a figure.\nAction: extract_salary_by_role\nAction Input: {\"role\": \"plumber\"}",
		"Thought: the tool gave an estimate.\nAnswer: 29000",
	}}
	p := NewPipeline(client)

	interp, err := p.Interpret(context.Background(), salaryRequest("whatever a plumber makes"))

	require.NoError(t, err)
	assert.Equal(t, "tier2", interp.Source)
	assert.Equal(t, 29000.0, interp.Value)
}

func TestInterpret_DegenerateAnswerSalvagedFromObservation(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		"Thought: use the tool.\nAction: extract_salary_by_role\nAction Input: {\"role\": \"plumber\", \"region\": \"Bristol\"}",
		"Thought: done.\nAnswer: None",
	}}
	p := NewPipeline(client)

	interp, err := p.Interpret(context.Background(), salaryRequest("whatever a plumber makes in Bristol"))

	require.NoError(t, err)
	assert.Equal(t, "tier2", interp.Source)
	assert.InDelta(t, 29000*1.05, interp.Value, 0.5)
	assert.InDelta(t, 0.75, interp.Confidence, 1e-9)
}

func TestInterpret_NothingUsableFallsBackToMidpoint(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"Thought: I am stuck."}}
	p := NewPipeline(client)

	req := Request{
		Variable:  "career_growth_weight",
		Question:  "How important is career growth?",
		Responses: []string{"hmm"},
		Schema:    StandardSchemas()["career_growth_weight"],
	}
	interp, err := p.Interpret(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "fallback", interp.Source)
	assert.Equal(t, 3.0, interp.Value)
	assert.InDelta(t, 0.3, interp.Confidence, 1e-9)
	assert.True(t, p.NeedsFollowup(interp))
}

func TestInterpret_ModelFailurePropagates(t *testing.T) {
	client := &llm.MockClient{Errs: []error{llm.ErrModelUnavailable}, Responses: []string{""}}
	p := NewPipeline(client)

	_, err := p.Interpret(context.Background(), salaryRequest("whatever a plumber makes"))

	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrModelUnavailable)
}

func TestInterpret_ImportanceToolOnScales(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		"Thought: map the phrase.\nAction: interpret_importance\nAction Input: {\"text\": \"work to live, not live to work\", \"scale_min\": 1, \"scale_max\": 5}",
		"Thought: done.\nAnswer: {\"value\": 4, \"confidence\": 0.8, \"reasoning\": \"They strongly value balance.\"}",
	}}
	p := NewPipeline(client)

	req := Request{
		Variable:  "work_life_balance_weight",
		Question:  "How important is work-life balance?",
		Responses: []string{"work to live, not live to work"},
		Schema:    StandardSchemas()["work_life_balance_weight"],
	}
	interp, err := p.Interpret(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 4.0, interp.Value)
	assert.InDelta(t, 0.8, interp.Confidence, 1e-9)
	assert.Equal(t, "They strongly value balance.", interp.Explanation)
}

func TestNeedsFollowup_Threshold(t *testing.T) {
	p := NewPipeline(&llm.MockClient{}, WithConfidenceThreshold(0.7))

	assert.True(t, p.NeedsFollowup(Interpretation{Confidence: 0.5}))
	assert.False(t, p.NeedsFollowup(Interpretation{Confidence: 0.85}))
}

func TestFollowupQuestion(t *testing.T) {
	salary := FollowupQuestion("min_salary", StandardSchemas()["min_salary"])
	assert.Contains(t, salary, "annual")

	scale := FollowupQuestion("risk_tolerance", StandardSchemas()["risk_tolerance"])
	assert.Contains(t, scale, "between 1 and 10")
}

func TestDefaultInterpretation_SalaryUsesMinimumWageEquivalent(t *testing.T) {
	d := DefaultInterpretation("min_salary", StandardSchemas()["min_salary"])

	assert.Equal(t, 20000.0, d.Value)
	assert.Equal(t, 0.5, d.Confidence)
	assert.True(t, d.IsDefault)
}

func TestDefaultInterpretation_OthersUseSchemaMinimum(t *testing.T) {
	d := DefaultInterpretation("risk_tolerance", StandardSchemas()["risk_tolerance"])

	assert.Equal(t, 1.0, d.Value)
	assert.True(t, d.IsDefault)
}

func TestEstimateSalaryByRole_RegionAdjustment(t *testing.T) {
	result := estimateSalaryByRole("software engineering", "London")

	salary, ok := result["salary"].(float64)
	require.True(t, ok)
	assert.Equal(t, 32000*1.25, salary)
}

func TestEstimateSalaryByRole_MultiKeywordRoleIsDeterministic(t *testing.T) {
	// "data engineering" contains two baseline keywords; the longer,
	// more specific one must win on every call.
	for i := 0; i < 200; i++ {
		result := estimateSalaryByRole("data engineering", "")

		salary, ok := result["salary"].(float64)
		require.True(t, ok)
		assert.Equal(t, 32000.0, salary)
		assert.Contains(t, result["reasoning"], "engineering")
	}
}

func TestEstimateSalaryByRole_UnknownRoleFloorsAtMinimumWage(t *testing.T) {
	result := estimateSalaryByRole("mystery occupation", "")

	salary := result["salary"].(float64)
	assert.GreaterOrEqual(t, salary, 20000.0)
}

func TestInterpretImportance_Midpoint(t *testing.T) {
	result := interpretImportance("no opinion really stated", 1, 10)

	// "really" alone is an intensifier, not a sentiment signal.
	value := result["value"].(float64)
	assert.InDelta(t, 5.5, value, 1e-9)
}
