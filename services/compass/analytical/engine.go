// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analytical provides the single-shot specialized reasoners:
// causal, consistency, counterfactual, critic, planning, reflection
// and EPR. Each formats one structured prompt, makes one model call,
// and parses the response as JSON by locating the first '{' and last
// '}'. Malformed model output never errors out of the package; it is
// returned as a structured failure payload with the raw text attached
// for diagnosis.
package analytical

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianCompass/services/llm"
)

// Outcome is the normalized result of one analytical reasoning call.
// Exactly one of Result or Err is populated. Reasoner carries the
// provenance tag in both cases.
type Outcome struct {
	Reasoner    string         `json:"reasoner"`
	Result      map[string]any `json:"result,omitempty"`
	Err         string         `json:"error,omitempty"`
	RawResponse string         `json:"raw_response,omitempty"`
}

// Failed reports whether the model output could not be parsed.
func (o Outcome) Failed() bool { return o.Err != "" }

// Engine holds the shared model port for all analytical reasoners.
// Reasoners are stateless; one Engine serves any number of concurrent
// calls.
type Engine struct {
	client llm.LLMClient
	params llm.GenerationParams
	log    *slog.Logger
}

// NewEngine builds an analytical reasoning engine.
func NewEngine(client llm.LLMClient, params llm.GenerationParams) *Engine {
	return &Engine{
		client: client,
		params: params,
		log:    slog.Default().With("component", "analytical"),
	}
}

// invoke performs the single model call and the parse-degrade-
// gracefully contract shared by every reasoner in this package.
func (e *Engine) invoke(ctx context.Context, reasoner, prompt string) (Outcome, error) {
	response, err := e.client.Generate(ctx, prompt, e.params)
	if err != nil {
		// Model-port failures are not swallowed at this layer.
		return Outcome{Reasoner: reasoner}, fmt.Errorf("%s reasoner model call: %w", reasoner, err)
	}

	result, perr := extractJSON(response)
	if perr != nil {
		e.log.Warn("unparseable reasoner output",
			"reasoner", reasoner,
			"error", perr,
			"response_len", len(response))
		return Outcome{
			Reasoner:    reasoner,
			Err:         perr.Error(),
			RawResponse: response,
		}, nil
	}
	return Outcome{Reasoner: reasoner, Result: result}, nil
}

// extractJSON pulls the span between the first '{' and the last '}'
// and decodes it as an object.
func extractJSON(text string) (map[string]any, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON in response: %w", err)
	}
	return decoded, nil
}

// section renders an optional prompt section, substituting a
// placeholder when the caller supplied nothing.
func section(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

// bulleted renders a list as prompt bullet lines.
func bulleted(items []string) string {
	if len(items) == 0 {
		return "(none specified)"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
