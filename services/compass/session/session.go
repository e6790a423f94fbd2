// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session holds per-conversation mutable state: the question
// plan, collected answers, follow-up counters and running preferences.
// State lives in process memory only and is destroyed on session
// close; persistence is a collaborator's job, not this package's.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianCompass/services/compass/interpret"
	"github.com/AleutianAI/AleutianCompass/services/compass/meta"
)

// Question is one planned question bound to a variable.
type Question struct {
	Variable string `json:"variable"`
	Text     string `json:"question"`
}

// AnswerRecord is one finalized answer with its interpretation.
type AnswerRecord struct {
	Variable         string  `json:"variable"`
	Question         string  `json:"question"`
	Answer           string  `json:"answer"`
	InterpretedValue float64 `json:"interpreted_value"`
	Confidence       float64 `json:"confidence"`
	IsDefault        bool    `json:"is_default"`
}

// State is the per-session conversation state. Not safe for concurrent
// use on its own; the Store hands out one State per session and the
// conversation handler serializes access to it.
type State struct {
	ID                   string               `json:"session_id"`
	JobField             string               `json:"job_field"`
	Questions            []Question           `json:"questions"`
	CurrentQuestionIndex int                  `json:"current_question_index"`
	UserData             []AnswerRecord       `json:"user_data"`
	History              []interpret.Exchange `json:"conversation_history"`
	CurrentResponses     []string             `json:"current_responses"`
	CurrentFollowups     int                  `json:"current_followup_count"`
	ConfidenceThreshold  float64              `json:"confidence_threshold"`
	MaxFollowups         int                  `json:"max_followups"`
	CreatedAt            time.Time            `json:"created_at"`

	// Controller is the session's meta-reasoning controller; one per
	// session so histories are never shared across conversations.
	Controller *meta.Controller `json:"-"`
}

const (
	defaultConfidenceThreshold = 0.7
	defaultMaxFollowups        = 2
)

func newState(id string) *State {
	return &State{
		ID:                  id,
		ConfidenceThreshold: defaultConfidenceThreshold,
		MaxFollowups:        defaultMaxFollowups,
		CreatedAt:           time.Now(),
		Controller:          meta.NewController(meta.InterpreterConfig(), meta.Automated()),
	}
}

// CurrentQuestion returns the question at the current index.
func (s *State) CurrentQuestion() (Question, bool) {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}

// Complete reports whether every planned question has been answered.
func (s *State) Complete() bool {
	return len(s.Questions) > 0 && s.CurrentQuestionIndex >= len(s.Questions)
}

// RecordResponse appends a raw user response for the current question
// and mirrors it into the conversation history.
func (s *State) RecordResponse(response string) {
	s.CurrentResponses = append(s.CurrentResponses, response)
	question := ""
	if q, ok := s.CurrentQuestion(); ok {
		question = q.Text
	}
	s.History = append(s.History, interpret.Exchange{Question: question, Response: response})
	s.Controller.ResetConsecutive()
}

// RecordFollowup counts one clarification round for the current
// question and reports whether the follow-up budget still allows it.
func (s *State) RecordFollowup() bool {
	s.CurrentFollowups++
	return s.CurrentFollowups <= s.MaxFollowups
}

// FollowupsExhausted reports whether the clarification budget for the
// current question is spent.
func (s *State) FollowupsExhausted() bool {
	return s.CurrentFollowups > s.MaxFollowups
}

// Accept finalizes the current question with an interpretation and
// advances. The question index only ever moves forward, and the
// follow-up counter and response buffer reset on advance.
func (s *State) Accept(interp interpret.Interpretation) error {
	q, ok := s.CurrentQuestion()
	if !ok {
		return fmt.Errorf("no current question to accept an answer for")
	}
	answer := ""
	if len(s.CurrentResponses) > 0 {
		answer = s.CurrentResponses[len(s.CurrentResponses)-1]
	}
	s.UserData = append(s.UserData, AnswerRecord{
		Variable:         q.Variable,
		Question:         q.Text,
		Answer:           answer,
		InterpretedValue: interp.Value,
		Confidence:       interp.Confidence,
		IsDefault:        interp.IsDefault,
	})
	s.CurrentQuestionIndex++
	s.CurrentResponses = nil
	s.CurrentFollowups = 0
	return nil
}

// Preferences returns the finalized variable values collected so far.
func (s *State) Preferences() map[string]float64 {
	prefs := make(map[string]float64, len(s.UserData))
	for _, r := range s.UserData {
		prefs[r.Variable] = r.InterpretedValue
	}
	return prefs
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
