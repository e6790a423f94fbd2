// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tools provides the named-action registry and executor used by
// the reasoning loop.
//
// Tools are registered once at startup with an explicit descriptor
// (name, description, typed parameter list) and a handler. The
// descriptor — not runtime reflection — is the source of truth for
// which parameters are required, which keeps tool metadata portable
// and inspectable.
//
// Thread Safety:
//
//	The registry is read-mostly after startup. Registration and
//	execution are both safe for concurrent use; the executor imposes
//	no locking around handler bodies, so handlers themselves must be
//	safe if invoked concurrently.
package tools

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compass_tool_executions_total",
		Help: "Total tool executions by tool and outcome",
	}, []string{"tool", "outcome"})

	toolExecutionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "compass_tool_execution_latency_seconds",
		Help:    "Tool execution latency",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// Param describes a single tool parameter.
type Param struct {
	// Name is the parameter name as it appears in tool input maps.
	Name string `json:"name"`

	// Required marks parameters that must be present in tool input.
	Required bool `json:"required"`

	// Description is embedded into reasoner prompts.
	Description string `json:"description"`
}

// Spec is the immutable metadata for a registered tool.
type Spec struct {
	// Name uniquely identifies the tool.
	Name string `json:"name"`

	// Description tells the model what the tool does.
	Description string `json:"description"`

	// Params is the ordered parameter list.
	Params []Param `json:"parameters"`
}

// Handler is the callable body of a tool.
//
// Handlers receive the validated input map and return a value or an
// error. A returned error is captured into the execution Result; it is
// never propagated to the reasoning loop as a Go error.
type Handler func(ctx context.Context, input map[string]any) (any, error)

type registeredTool struct {
	spec    Spec
	handler Handler
}

// Registry holds registered tools and executes them on behalf of
// reasoners.
//
// Thread Safety: Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]registeredTool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]registeredTool)}
}

// Register adds a tool to the registry.
//
// Description:
//
//	Overwriting an existing name is allowed (last registration wins)
//	but logged as a warning, since it usually indicates two components
//	fighting over the same tool name.
//
// Inputs:
//
//	spec - The tool descriptor. Name must be non-empty.
//	handler - The tool body. Must be non-nil.
func (r *Registry) Register(spec Spec, handler Handler) {
	if spec.Name == "" || handler == nil {
		slog.Error("Ignoring invalid tool registration", "name", spec.Name)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[spec.Name]; exists {
		slog.Warn("Tool already registered, overwriting", "name", spec.Name)
	}
	r.tools[spec.Name] = registeredTool{spec: spec, handler: handler}
	slog.Info("Registered tool", "name", spec.Name, "params", len(spec.Params))
}

// Specs returns a snapshot of all registered tool metadata, sorted by
// name. The returned slice and its parameter lists are deep copies;
// mutating them does not affect the registry.
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]Spec, 0, len(r.tools))
	for _, t := range r.tools {
		spec := t.spec
		spec.Params = append([]Param(nil), t.spec.Params...)
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

func (r *Registry) lookup(name string) (registeredTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}
