// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package compass

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCompass/services/compass/interpret"
	"github.com/AleutianAI/AleutianCompass/services/llm"
)

func newTestRouter(client llm.LLMClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, NewService(client))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleReason(t *testing.T) {
	client := &llm.MockClient{
		Fn: func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "Observation: 12") {
				return "Thought: Done.\nAnswer: 12", nil
			}
			return "Thought: Multiply.\nAction: calculate\nAction Input: {\"expression\": \"3*4\"}", nil
		},
	}
	r := newTestRouter(client)

	w := postJSON(t, r, "/v1/compass/reason", ReasonRequest{Query: "What is 3*4?"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ReasonResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "12", resp.Answer)
	assert.Equal(t, "answer_found", resp.StoppingReason)
	assert.Equal(t, 2, resp.Iterations)
	require.Len(t, resp.Steps, 2)
	assert.Equal(t, "12", resp.Steps[0].Observation)
}

func TestHandleReasonRejectsMissingQuery(t *testing.T) {
	r := newTestRouter(&llm.MockClient{})

	w := postJSON(t, r, "/v1/compass/reason", map[string]any{"max_iterations": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleReasonModelFailure(t *testing.T) {
	client := &llm.MockClient{
		Fn: func(ctx context.Context, prompt string) (string, error) {
			return "", llm.ErrModelUnavailable
		},
	}
	r := newTestRouter(client)

	w := postJSON(t, r, "/v1/compass/reason", ReasonRequest{Query: "anything"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "error")
	assert.Contains(t, body, "partial_trace")
}

func TestHandleInterpretDeterministic(t *testing.T) {
	r := newTestRouter(&llm.MockClient{})

	w := postJSON(t, r, "/v1/compass/interpret", InterpretRequest{
		Variable: "min_salary",
		Question: "What is your minimum salary?",
		Answer:   "£20 per hour",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var interp interpret.Interpretation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &interp))
	assert.Equal(t, 41600.0, interp.Value)
	assert.GreaterOrEqual(t, interp.Confidence, 0.7)
}

func TestHandleInterpretRejectsMissingFields(t *testing.T) {
	r := newTestRouter(&llm.MockClient{})

	w := postJSON(t, r, "/v1/compass/interpret", map[string]any{"variable": "min_salary"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleTools(t *testing.T) {
	r := newTestRouter(&llm.MockClient{})

	req := httptest.NewRequest(http.MethodGet, "/v1/compass/tools", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	names := make([]string, 0, len(body.Tools))
	for _, tool := range body.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "calculate")
	assert.Contains(t, names, "extract_salary_by_role")
	assert.Contains(t, names, "interpret_importance")
}

func TestHandleHealth(t *testing.T) {
	r := newTestRouter(&llm.MockClient{})

	req := httptest.NewRequest(http.MethodGet, "/v1/compass/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
