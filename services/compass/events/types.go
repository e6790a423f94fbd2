// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package events provides the typed event stream for conversation
// sessions. Events let transports (websocket, logging, metrics)
// observe the reasoning and interpretation flow without coupling to
// the service implementation.
//
// Thread Safety:
//
//	All types in this package are designed for concurrent use.
package events

import (
	"time"

	"github.com/AleutianAI/AleutianCompass/services/compass/interpret"
	"github.com/AleutianAI/AleutianCompass/services/compass/react"
)

// Type identifies the kind of event.
type Type string

const (
	// TypeSessionStart is emitted when a conversation session begins.
	TypeSessionStart Type = "session_start"

	// TypeSessionEnd is emitted when a session closes or is destroyed.
	TypeSessionEnd Type = "session_end"

	// TypeReasoningStep is emitted for every recorded reasoning step.
	TypeReasoningStep Type = "reasoning_step"

	// TypeNextQuestion is emitted when the conversation advances.
	TypeNextQuestion Type = "next_question"

	// TypeFollowupQuestion is emitted when clarification is requested.
	TypeFollowupQuestion Type = "followup_question"

	// TypeInterpretation is emitted when an answer is finalized.
	TypeInterpretation Type = "interpretation_result"

	// TypeProfileCreated is emitted when the preference profile is
	// complete.
	TypeProfileCreated Type = "profile_created"

	// TypeError is emitted on terminal failures; it carries any
	// partial reasoning trace for diagnosis.
	TypeError Type = "error"
)

// Event is one entry in a session's event stream. The Data field
// holds the typed payload matching the event's Type.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// ReasoningStepData accompanies TypeReasoningStep.
type ReasoningStepData struct {
	Variable string     `json:"variable,omitempty"`
	Step     react.Step `json:"step"`
}

// QuestionData accompanies TypeNextQuestion and TypeFollowupQuestion.
type QuestionData struct {
	Variable      string `json:"variable"`
	Question      string `json:"question"`
	QuestionIndex int    `json:"question_index"`
	FollowupCount int    `json:"followup_count,omitempty"`
}

// InterpretationData accompanies TypeInterpretation.
type InterpretationData struct {
	Interpretation interpret.Interpretation `json:"interpretation"`
	Answer         string                   `json:"answer"`
}

// ProfileData accompanies TypeProfileCreated.
type ProfileData struct {
	ProfileID   string             `json:"profile_id"`
	JobField    string             `json:"job_field"`
	Preferences map[string]float64 `json:"preferences"`
}

// ErrorData accompanies TypeError. PartialTrace is present when a
// reasoning run failed midway.
type ErrorData struct {
	Message      string        `json:"message"`
	PartialTrace *react.Trace  `json:"partial_trace,omitempty"`
}
