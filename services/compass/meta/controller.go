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
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// analysisInterval throttles aggregate meta-analysis.
const analysisInterval = 5 * time.Second

// consecutiveAnalysisFloor is the consecutive-call count at which
// periodic meta-analysis kicks in.
const consecutiveAnalysisFloor = 3

// autoStopConfidence is the average confidence below which the
// controller stops reasoning outright during an inefficient phase.
const autoStopConfidence = 0.3

// Config holds the controller thresholds.
type Config struct {
	MaxConsecutiveCalls     int     `json:"max_consecutive_calls"`
	MaxReasoningPerVariable int     `json:"max_reasoning_per_variable"`
	SimilarityThreshold     float64 `json:"similarity_threshold"`
	ConfidenceThreshold     float64 `json:"confidence_threshold"`
	ProgressThreshold       float64 `json:"progress_threshold"`
}

// DefaultConfig returns the general-purpose thresholds.
func DefaultConfig() Config {
	return Config{
		MaxConsecutiveCalls:     5,
		MaxReasoningPerVariable: 3,
		SimilarityThreshold:     0.8,
		ConfidenceThreshold:     0.7,
		ProgressThreshold:       0.05,
	}
}

// InterpreterConfig returns the tighter thresholds used by the value
// interpretation pipeline, which works over short answers and cannot
// afford long reasoning chains mid-conversation.
func InterpreterConfig() Config {
	return Config{
		MaxConsecutiveCalls:     3,
		MaxReasoningPerVariable: 2,
		SimilarityThreshold:     0.9,
		ConfidenceThreshold:     0.8,
		ProgressThreshold:       0.05,
	}
}

// Analysis is the aggregate assessment of the reasoning process.
type Analysis struct {
	Status         string  `json:"status"`
	Message        string  `json:"message"`
	Recommendation string  `json:"recommendation"`
	AvgConfidence  float64 `json:"avg_confidence"`
}

// Inefficient reports whether the analysis flagged the process.
func (a *Analysis) Inefficient() bool { return a != nil && a.Status == "inefficient" }

// Controller gates model calls for one session. The automated variant
// never blocks at the consecutive-call cap; the base variant logs a
// warning and defers the decision upward.
//
// Thread Safety:
//
//	All methods are safe for concurrent use; a single mutex serializes
//	history access and counters.
type Controller struct {
	mu           sync.Mutex
	cfg          Config
	hist         *History
	consecutive  int
	total        int
	lastAnalysis time.Time
	automated    bool
	now          func() time.Time
	log          *slog.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// Automated makes the cap-handling fully autonomous: on reaching the
// consecutive-call cap the counter resets and reasoning continues
// without human input.
func Automated() ControllerOption {
	return func(c *Controller) { c.automated = true }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithControllerLogger overrides the default logger.
func WithControllerLogger(log *slog.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// NewController builds a controller with the given thresholds. Create
// one per session; the per-variable history is private to it.
func NewController(cfg Config, opts ...ControllerOption) *Controller {
	c := &Controller{
		cfg:  cfg,
		hist: NewHistory(),
		now:  time.Now,
		log:  slog.Default().With("component", "meta"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastAnalysis = c.now()
	return c
}

// Track records one reasoning attempt for a variable.
func (c *Controller) Track(variable string, response any, confidence float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hist.Add(variable, response, confidence)
	c.log.Debug("reasoning tracked",
		"variable", variable,
		"confidence", confidence,
		"attempts", c.hist.Count(variable))
}

// Increment bumps both the consecutive and total call counters. Call
// it after every model invocation made under this controller.
func (c *Controller) Increment() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutive++
	c.total++
	c.log.Debug("model call counted",
		"total", c.total,
		"consecutive", c.consecutive,
		"cap", c.cfg.MaxConsecutiveCalls)
}

// ResetConsecutive clears the consecutive counter. Call on explicit
// user interaction; the total counter is never reset.
func (c *Controller) ResetConsecutive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutive = 0
	c.log.Debug("consecutive call counter reset on user interaction")
}

// Counters returns (consecutive, total) call counts.
func (c *Controller) Counters() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consecutive, c.total
}

// BestEstimate returns the latest tracked response and confidence for
// a variable, for callers that stop reasoning and settle.
func (c *Controller) BestEstimate(variable string) (string, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hist.LastResponse(variable), c.hist.LastConfidence(variable)
}

// ShouldContinue decides whether further reasoning on a variable is
// productive. Checks run in fixed precedence: attempt floor, met
// confidence, attempt cap, confidence plateau, circular reasoning.
func (c *Controller) ShouldContinue(variable string) (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shouldContinueLocked(variable)
}

func (c *Controller) shouldContinueLocked(variable string) (bool, string) {
	if c.hist.Count(variable) < 2 {
		return true, "Initial reasoning"
	}
	if c.hist.LastConfidence(variable) >= c.cfg.ConfidenceThreshold {
		return false, "Confidence threshold met"
	}
	if c.hist.Count(variable) >= c.cfg.MaxReasoningPerVariable {
		return false, fmt.Sprintf("Maximum reasoning attempts (%d) reached for %s",
			c.cfg.MaxReasoningPerVariable, variable)
	}
	if progress := c.hist.ConfidenceProgress(variable); progress <= c.cfg.ProgressThreshold {
		return false, fmt.Sprintf("Minimal confidence improvement: %.2f", progress)
	}
	if similarity := c.hist.Similarity(variable); similarity >= c.cfg.SimilarityThreshold {
		return false, fmt.Sprintf("Potential circular reasoning detected (similarity: %.2f)", similarity)
	}
	return true, "Reasoning is still productive"
}

// AnalyzeProcess computes aggregate statistics over all tracked
// variables. Throttled to once per five seconds and active only after
// three or more consecutive calls; returns nil when skipped.
func (c *Controller) AnalyzeProcess() *Analysis {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analyzeLocked()
}

func (c *Controller) analyzeLocked() *Analysis {
	now := c.now()
	if now.Sub(c.lastAnalysis) < analysisInterval {
		return nil
	}
	c.lastAnalysis = now

	if c.consecutive < consecutiveAnalysisFloor {
		return nil
	}

	totalVars := len(c.hist.Variables())
	atCap := 0
	for _, v := range c.hist.Variables() {
		if c.hist.Count(v) >= c.cfg.MaxReasoningPerVariable {
			atCap++
		}
	}
	avg := c.hist.AverageConfidence()

	if atCap > 0 || avg < 0.5 {
		return &Analysis{
			Status:         "inefficient",
			Message:        fmt.Sprintf("Reasoning appears inefficient. Analyzed %d variables with avg confidence %.2f.", totalVars, avg),
			Recommendation: "Consider asking user for clarification rather than additional reasoning.",
			AvgConfidence:  avg,
		}
	}
	if avg >= 0.6 {
		return &Analysis{
			Status:         "productive",
			Message:        fmt.Sprintf("Reasoning is productive with %d variables and avg confidence %.2f.", totalVars, avg),
			Recommendation: "Continue current approach.",
			AvgConfidence:  avg,
		}
	}
	return nil
}

// CheckAndHandle is the full pre-call gate: the per-variable decision
// first, then the consecutive-call cap, then the periodic inefficiency
// check. Returns true to proceed with another model call.
//
// At the cap the automated variant resets the counter and proceeds;
// the base variant logs a warning but still proceeds, deferring the
// real decision upward. Both variants auto-stop during an inefficient
// phase when average confidence is very low.
func (c *Controller) CheckAndHandle(variable string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if variable != "" {
		if proceed, reason := c.shouldContinueLocked(variable); !proceed {
			c.log.Info("stopping further reasoning", "variable", variable, "reason", reason)
			return false
		}
	}

	if c.consecutive >= c.cfg.MaxConsecutiveCalls {
		if analysis := c.analyzeLocked(); analysis != nil {
			c.log.Info("meta-analysis", "status", analysis.Status, "message", analysis.Message)
		}
		if c.automated {
			c.log.Info("consecutive call cap reached; resetting and continuing",
				"consecutive", c.consecutive, "total", c.total)
			c.consecutive = 0
		} else {
			c.log.Warn("consecutive call cap reached",
				"consecutive", c.consecutive, "total", c.total)
		}
		return true
	}

	if c.consecutive >= consecutiveAnalysisFloor {
		if analysis := c.analyzeLocked(); analysis.Inefficient() {
			c.log.Info("meta-analysis", "status", analysis.Status, "message", analysis.Message)
			if analysis.AvgConfidence < autoStopConfidence {
				c.log.Warn("stopping reasoning on very low average confidence",
					"avg_confidence", analysis.AvgConfidence)
				return false
			}
		}
	}
	return true
}

// Gate adapts CheckAndHandle to the reasoner's pre-call gate shape for
// one variable.
func (c *Controller) Gate(variable string) func() (bool, string) {
	return func() (bool, string) {
		if c.CheckAndHandle(variable) {
			return true, ""
		}
		_, reason := c.ShouldContinue(variable)
		return false, reason
	}
}
