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
	"time"

	"github.com/AleutianAI/AleutianCompass/services/compass/react"
)

// Profile is the finalized preference profile for one user.
type Profile struct {
	UserID      string             `json:"user_id"`
	JobField    string             `json:"job_field"`
	Preferences map[string]float64 `json:"preferences"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ReasonRequest is the body for POST /v1/compass/reason.
type ReasonRequest struct {
	Query         string `json:"query" binding:"required"`
	MaxIterations int    `json:"max_iterations"`
}

// ReasonResponse wraps a finished reasoning trace.
type ReasonResponse struct {
	Answer         string       `json:"answer"`
	StoppingReason string       `json:"stopping_reason"`
	Iterations     int          `json:"iterations"`
	Steps          []react.Step `json:"steps"`
}

// InterpretRequest is the body for POST /v1/compass/interpret.
type InterpretRequest struct {
	Variable string `json:"variable" binding:"required"`
	Question string `json:"question"`
	Answer   string `json:"answer" binding:"required"`
	JobField string `json:"job_field"`
}

// WSRequest is a client message on the conversation socket.
type WSRequest struct {
	Type       string `json:"type"` // "start", "answer", "close"
	ResumeText string `json:"resume_text,omitempty"`
	Text       string `json:"text,omitempty"`
}
