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
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianCompass/services/compass/meta"
	"github.com/AleutianAI/AleutianCompass/services/compass/react"
	"github.com/AleutianAI/AleutianCompass/services/compass/tools"
	"github.com/AleutianAI/AleutianCompass/services/llm"
)

// Exchange is one prior question/answer pair supplied as context.
type Exchange struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// Request carries everything needed to interpret one answer.
type Request struct {
	Variable  string
	Question  string
	Responses []string // all responses for this question, latest last
	Schema    Schema
	JobField  string
	History   []Exchange
}

func (r Request) latest() string {
	if len(r.Responses) == 0 {
		return ""
	}
	return r.Responses[len(r.Responses)-1]
}

// Interpretation is the pipeline's output: a typed value bounded to
// the schema, with provenance.
type Interpretation struct {
	Variable    string  `json:"variable"`
	Value       float64 `json:"value"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
	IsDefault   bool    `json:"is_default"`
	Source      string  `json:"source"`
}

// ReasoningError reports a failed Tier 2 run. It carries whatever
// partial trace the run produced so transports can surface it.
type ReasoningError struct {
	Variable string
	Trace    *react.Trace
	Err      error
}

func (e *ReasoningError) Error() string {
	return fmt.Sprintf("interpreting %s: %v", e.Variable, e.Err)
}

func (e *ReasoningError) Unwrap() error { return e.Err }

// Pipeline runs the two-tier interpretation strategy. Tier 1 never
// calls a model; Tier 2 drives a tool-using reasoning run gated by a
// per-session meta controller.
type Pipeline struct {
	client              llm.LLMClient
	registry            *tools.Registry
	controller          *meta.Controller
	confidenceThreshold float64
	maxIterations       int
	stepCallback        react.StepCallback
	log                 *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithConfidenceThreshold overrides the acceptance threshold below
// which a follow-up question is warranted.
func WithConfidenceThreshold(t float64) PipelineOption {
	return func(p *Pipeline) { p.confidenceThreshold = t }
}

// WithController injects the session's meta controller. Without one a
// private automated controller with interpreter thresholds is used.
func WithController(c *meta.Controller) PipelineOption {
	return func(p *Pipeline) { p.controller = c }
}

// WithRegistry overrides the tool registry used for Tier 2 runs.
func WithRegistry(reg *tools.Registry) PipelineOption {
	return func(p *Pipeline) { p.registry = reg }
}

// WithStepCallback observes every Tier 2 reasoning step, letting
// callers stream reasoning progress while a run is in flight.
func WithStepCallback(cb react.StepCallback) PipelineOption {
	return func(p *Pipeline) { p.stepCallback = cb }
}

// WithPipelineLogger overrides the default logger.
func WithPipelineLogger(log *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.log = log }
}

// NewPipeline builds an interpretation pipeline around a model port.
func NewPipeline(client llm.LLMClient, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		client:              client,
		confidenceThreshold: 0.7,
		maxIterations:       4,
		log:                 slog.Default().With("component", "interpret"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.controller == nil {
		p.controller = meta.NewController(meta.InterpreterConfig(), meta.Automated())
	}
	if p.registry == nil {
		p.registry = tools.NewRegistry()
		RegisterInterpreterTools(p.registry)
		tools.RegisterCalculator(p.registry)
	}
	return p
}

// ConfidenceThreshold returns the follow-up acceptance threshold.
func (p *Pipeline) ConfidenceThreshold() float64 { return p.confidenceThreshold }

// Interpret produces a typed, clamped value for one answer.
//
// Description:
//
//	Tier 1 runs first and settles the answer when it produces a value
//	appropriate to the schema (numeric extraction for salary ranges,
//	numeric or lexicon extraction for rating scales). Otherwise Tier 2
//	drives a tool-using reasoning run; its structured result is parsed
//	from the final answer, or from the last tool observation when the
//	answer is degenerate. A Tier 2 run that produces nothing usable
//	yields a low-confidence midpoint so the conversation can fall back
//	to a follow-up question rather than stall.
//
// Outputs:
//   - Interpretation: always has Value within [schema.Min, schema.Max]
//     and Confidence in [0,1].
//   - error: only on terminal model-port failure during Tier 2.
func (p *Pipeline) Interpret(ctx context.Context, req Request) (Interpretation, error) {
	text := req.latest()

	if c, ok := ExtractNumeric(text, req.Schema); ok && p.tier1Acceptable(c, req.Schema) {
		p.controller.Track(req.Variable, c.Value, c.Confidence)
		return Interpretation{
			Variable:    req.Variable,
			Value:       req.Schema.Clamp(c.Value),
			Confidence:  c.Confidence,
			Explanation: c.Explanation,
			Source:      "tier1:" + c.Source,
		}, nil
	}

	return p.interpretWithModel(ctx, req)
}

// tier1Acceptable rejects lexicon hits for salary-range schemas;
// qualitative language about pay ("minimum wage", role names) needs
// model reasoning, not a fraction of a half-million-unit scale.
func (p *Pipeline) tier1Acceptable(c Candidate, schema Schema) bool {
	if salarySchema(schema) && strings.HasPrefix(c.Source, "lexicon") {
		return false
	}
	return true
}

func (p *Pipeline) interpretWithModel(ctx context.Context, req Request) (Interpretation, error) {
	task := p.buildTask(req)
	opts := []react.Option{
		react.WithName("interpreter"),
		react.WithMaxIterations(p.maxIterations),
		react.WithFinalAnswerPrompt(true),
		react.WithGate(p.controller.Gate(req.Variable)),
		react.WithLogger(p.log),
	}
	if p.stepCallback != nil {
		opts = append(opts, react.WithStepCallback(p.stepCallback))
	}
	reasoner := react.NewReasoner(p.client, opts...)

	trace, err := reasoner.Run(ctx, task, p.historyContext(req), p.registry)
	p.controller.Increment()
	if err != nil {
		return Interpretation{}, &ReasoningError{Variable: req.Variable, Trace: trace, Err: err}
	}

	if interp, ok := p.parseTrace(req, trace); ok {
		p.controller.Track(req.Variable, interp.Value, interp.Confidence)
		return interp, nil
	}

	// Nothing usable came back. Settle on a low-confidence midpoint so
	// the follow-up policy takes over.
	mid := req.Schema.Clamp((req.Schema.Min + req.Schema.Max) / 2)
	p.controller.Track(req.Variable, mid, 0.3)
	p.log.Warn("interpretation produced no usable value",
		"variable", req.Variable,
		"stopping_reason", trace.StoppingReason)
	return Interpretation{
		Variable:    req.Variable,
		Value:       mid,
		Confidence:  0.3,
		Explanation: fmt.Sprintf("Could not determine a specific value from the response; using the midpoint %g.", mid),
		Source:      "fallback",
	}, nil
}

func (p *Pipeline) buildTask(req Request) string {
	var b strings.Builder
	if req.Variable == "min_salary" {
		fmt.Fprintf(&b, "Interpret the user's minimum acceptable annual salary from their answer.\n")
		fmt.Fprintf(&b, "If they named a role or pay rate instead of a figure, use the extract_salary_by_role tool, then convert rates with convert_units or calculate.\n")
	} else {
		fmt.Fprintf(&b, "Interpret the user's answer about %s as a number between %g and %g.\n",
			req.Schema.Description, req.Schema.Min, req.Schema.Max)
		fmt.Fprintf(&b, "Use the interpret_importance tool with scale_min=%g and scale_max=%g.\n",
			req.Schema.Min, req.Schema.Max)
	}
	fmt.Fprintf(&b, "Question asked: %q\n", req.Question)
	fmt.Fprintf(&b, "User's answer(s): %q\n", strings.Join(req.Responses, " | "))
	if req.JobField != "" {
		fmt.Fprintf(&b, "Job field: %s\n", req.JobField)
	}
	b.WriteString("Answer with only the final numeric value.")
	return b.String()
}

func (p *Pipeline) historyContext(req Request) string {
	if len(req.History) == 0 {
		return ""
	}
	start := 0
	if len(req.History) > 5 {
		start = len(req.History) - 5
	}
	var b strings.Builder
	for _, h := range req.History[start:] {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", h.Question, h.Response)
	}
	return b.String()
}

// parseTrace recovers the structured result from a reasoning trace:
// the final answer when usable, otherwise the last tool observation.
func (p *Pipeline) parseTrace(req Request, trace *react.Trace) (Interpretation, bool) {
	candidates := []string{}
	if !degenerate(trace.Answer) {
		candidates = append(candidates, trace.Answer)
	}
	if obs := trace.LastObservation(); obs != "" {
		candidates = append(candidates, obs)
	}

	for _, text := range candidates {
		if value, confidence, reasoning, ok := parseToolResult(text); ok {
			return Interpretation{
				Variable:    req.Variable,
				Value:       req.Schema.Clamp(value),
				Confidence:  confidence,
				Explanation: reasoning,
				Source:      "tier2",
			}, true
		}
		if c, ok := ExtractNumeric(text, req.Schema); ok && c.Source == "numeric" {
			return Interpretation{
				Variable:    req.Variable,
				Value:       req.Schema.Clamp(c.Value),
				Confidence:  0.6,
				Explanation: fmt.Sprintf("Model answered %q; %s", strings.TrimSpace(text), c.Explanation),
				Source:      "tier2",
			}, true
		}
	}
	return Interpretation{}, false
}

// parseToolResult decodes a {salary|value, confidence, reasoning}
// object embedded anywhere in the text.
func parseToolResult(text string) (value, confidence float64, reasoning string, ok bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return 0, 0, "", false
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &decoded); err != nil {
		return 0, 0, "", false
	}

	raw, present := decoded["salary"]
	if !present {
		raw, present = decoded["value"]
	}
	if !present {
		return 0, 0, "", false
	}
	v, ok := asFloat(raw)
	if !ok {
		return 0, 0, "", false
	}

	confidence = 0.6
	if c, found := asFloat(decoded["confidence"]); found {
		confidence = c
	}
	reasoning, _ = decoded["reasoning"].(string)
	if reasoning == "" {
		reasoning = "Interpreted via tool-assisted reasoning."
	}
	return v, confidence, reasoning, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

// degenerate reports whether a final answer carries no information.
func degenerate(answer string) bool {
	t := strings.ToLower(strings.TrimSpace(answer))
	return t == "" || t == "none" || t == "null" || t == "n/a" || t == "unknown"
}
