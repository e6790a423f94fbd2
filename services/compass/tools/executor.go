// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ToolNotFoundError is returned by Execute when the named tool was
// never registered. Reasoners are expected to convert it into an
// observation, not to abort the run.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not registered", e.Name)
}

// MissingParameterError is returned by Execute when a required
// parameter is absent from the input map. The handler is not invoked.
type MissingParameterError struct {
	Tool  string
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("required parameter %q missing for tool %q", e.Param, e.Tool)
}

// Result is the outcome of a tool execution.
//
// Exactly one of Value and Err carries information: a handler failure
// is captured into Err as text rather than surfaced as a Go error, so
// the reasoning loop can fold it into an observation and keep going.
type Result struct {
	Value any    `json:"result,omitempty"`
	Err   string `json:"error,omitempty"`
}

// Failed reports whether the execution produced an error result.
func (r Result) Failed() bool {
	return r.Err != ""
}

// Execute runs the named tool with the given input.
//
// Description:
//
//	Validates the input against the tool's descriptor, then invokes
//	the handler. Handler errors and panics are captured into the
//	Result; only misuse (unknown tool, missing required parameter)
//	returns a Go error, and even those the caller should treat as
//	recoverable observations.
//
// Inputs:
//
//	ctx - Context for cancellation; passed through to the handler.
//	name - The registered tool name.
//	input - Parameter map. May be nil when the tool has no required params.
//
// Outputs:
//
//	Result - Value on success, Err text on handler failure.
//	error - *ToolNotFoundError or *MissingParameterError on misuse.
//
// Thread Safety: Safe for concurrent use if the handler is.
func (r *Registry) Execute(ctx context.Context, name string, input map[string]any) (result Result, err error) {
	tool, ok := r.lookup(name)
	if !ok {
		toolExecutions.WithLabelValues(name, "not_found").Inc()
		return Result{}, &ToolNotFoundError{Name: name}
	}

	for _, p := range tool.spec.Params {
		if !p.Required {
			continue
		}
		if _, present := input[p.Name]; !present {
			toolExecutions.WithLabelValues(name, "missing_param").Inc()
			return Result{}, &MissingParameterError{Tool: name, Param: p.Name}
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Tool handler panicked", "tool", name, "panic", rec)
			toolExecutions.WithLabelValues(name, "panic").Inc()
			result = Result{Err: fmt.Sprintf("panic: %v", rec)}
			err = nil
		}
	}()

	slog.Info("Executing tool", "tool", name, "params", paramNames(input))
	start := time.Now()
	value, handlerErr := tool.handler(ctx, input)
	toolExecutionLatency.Observe(time.Since(start).Seconds())

	if handlerErr != nil {
		slog.Error("Tool execution failed", "tool", name, "error", handlerErr)
		toolExecutions.WithLabelValues(name, "error").Inc()
		return Result{Err: handlerErr.Error()}, nil
	}
	toolExecutions.WithLabelValues(name, "ok").Inc()
	return Result{Value: value}, nil
}

func paramNames(input map[string]any) []string {
	names := make([]string, 0, len(input))
	for k := range input {
		names = append(names, k)
	}
	return names
}
