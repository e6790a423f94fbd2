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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCompass/services/llm"
)

func TestExtractJSON_SurroundingProse(t *testing.T) {
	text := "Here is my analysis:\n{\"is_consistent\": true, \"overall_assessment\": \"fine\"}\nLet me know if you need more."
	m, err := extractJSON(text)

	require.NoError(t, err)
	assert.Equal(t, true, m["is_consistent"])
	assert.Equal(t, "fine", m["overall_assessment"])
}

func TestExtractJSON_NoObject(t *testing.T) {
	_, err := extractJSON("I cannot produce JSON for this.")
	assert.Error(t, err)
}

func TestExtractJSON_NestedBracesUseOutermostSpan(t *testing.T) {
	text := "{\"steps\": [{\"step_number\": 1, \"name\": \"a\"}], \"plan_name\": \"p\"}"
	m, err := extractJSON(text)

	require.NoError(t, err)
	assert.Equal(t, "p", m["plan_name"])
}

func TestConsistency_Success(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		"{\"is_consistent\": false, \"contradictions\": [{\"severity\": \"major\"}]}",
	}}
	e := NewEngine(client, llm.GenerationParams{})

	out, err := e.Consistency(context.Background(), ConsistencyInput{Content: "A and not A."})

	require.NoError(t, err)
	assert.Equal(t, "consistency", out.Reasoner)
	assert.False(t, out.Failed())
	assert.Equal(t, false, out.Result["is_consistent"])
}

func TestPlanning_MalformedOutputBecomesErrorPayload(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"Sorry, I will just describe the plan in prose."}}
	e := NewEngine(client, llm.GenerationParams{})

	out, err := e.Planning(context.Background(), PlanningInput{Problem: "choose a job"})

	require.NoError(t, err)
	assert.True(t, out.Failed())
	assert.Equal(t, "planning", out.Reasoner)
	assert.Contains(t, out.RawResponse, "prose")
	assert.Nil(t, out.Result)
}

func TestCausal_ModelErrorPropagates(t *testing.T) {
	client := &llm.MockClient{Errs: []error{llm.ErrModelUnavailable}, Responses: []string{""}}
	e := NewEngine(client, llm.GenerationParams{})

	out, err := e.Causal(context.Background(), CausalInput{Content: "x causes y"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrModelUnavailable))
	assert.Equal(t, "causal", out.Reasoner)
}

func TestPromptsCarryInputSections(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"{}"}}
	e := NewEngine(client, llm.GenerationParams{})

	_, err := e.Counterfactual(context.Background(), CounterfactualInput{
		Reasoning:   "take the first offer",
		Assumptions: []string{"the market is bad"},
	})

	require.NoError(t, err)
	require.Len(t, client.Prompts, 1)
	assert.Contains(t, client.Prompts[0], "take the first offer")
	assert.Contains(t, client.Prompts[0], "- the market is bad")
}

func TestEPR_ProvenanceTag(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"{\"hypotheses\": []}"}}
	e := NewEngine(client, llm.GenerationParams{})

	out, err := e.EPR(context.Background(), EPRInput{Observation: "offers dried up"})

	require.NoError(t, err)
	assert.Equal(t, "epr", out.Reasoner)
}

func TestCriticAndReflection_ShareParseContract(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		"Evaluation follows. {\"overall_assessment\": {\"score\": \"7\"}}",
		"not json at all",
	}}
	e := NewEngine(client, llm.GenerationParams{})

	critic, err := e.Critic(context.Background(), CriticInput{Plan: "apply everywhere"})
	require.NoError(t, err)
	assert.False(t, critic.Failed())

	reflection, err := e.Reflection(context.Background(), ReflectionInput{Task: "t", ReasoningTrace: "r"})
	require.NoError(t, err)
	assert.True(t, reflection.Failed())
	assert.Equal(t, "not json at all", reflection.RawResponse)
}
