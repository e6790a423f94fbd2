// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package compass wires the reasoning core into a conversation
// service: question plan generation from a resume, answer
// interpretation with follow-ups, preference profile creation, and
// the HTTP/websocket surface that drives it all.
package compass

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianCompass/pkg/validation"
	"github.com/AleutianAI/AleutianCompass/services/compass/events"
	"github.com/AleutianAI/AleutianCompass/services/compass/interpret"
	"github.com/AleutianAI/AleutianCompass/services/compass/react"
	"github.com/AleutianAI/AleutianCompass/services/compass/session"
	"github.com/AleutianAI/AleutianCompass/services/compass/tools"
	"github.com/AleutianAI/AleutianCompass/services/llm"
)

const defaultJobField = "software_engineering"

// Service is the conversation orchestrator. One Service serves every
// session; per-session state lives in the session store.
type Service struct {
	client   llm.LLMClient
	sessions *session.Store
	registry *tools.Registry
	log      *slog.Logger
}

// NewService builds the service around a model port.
func NewService(client llm.LLMClient) *Service {
	registry := tools.NewRegistry()
	tools.RegisterCalculator(registry)
	interpret.RegisterInterpreterTools(registry)
	return &Service{
		client:   client,
		sessions: session.NewStore(),
		registry: registry,
		log:      slog.Default().With("component", "compass"),
	}
}

// Sessions exposes the session store to transports.
func (s *Service) Sessions() *session.Store { return s.sessions }

// Registry exposes the tool registry for the tools endpoint.
func (s *Service) Registry() *tools.Registry { return s.registry }

// Reason runs one ad-hoc tool-using reasoning query.
func (s *Service) Reason(ctx context.Context, query string, maxIterations int) (*react.Trace, error) {
	opts := []react.Option{react.WithFinalAnswerPrompt(true)}
	if maxIterations > 0 {
		opts = append(opts, react.WithMaxIterations(maxIterations))
	}
	reasoner := react.NewReasoner(s.client, opts...)
	return reasoner.Run(ctx, query, "", s.registry)
}

// Interpret runs the two-tier pipeline for one standalone answer,
// outside any session.
func (s *Service) Interpret(ctx context.Context, variable, question, answer, jobField string) (interpret.Interpretation, error) {
	pipeline := interpret.NewPipeline(s.client)
	return pipeline.Interpret(ctx, interpret.Request{
		Variable:  variable,
		Question:  question,
		Responses: []string{answer},
		Schema:    interpret.SchemaFor(variable),
		JobField:  jobField,
	})
}

// ExtractJobField pulls the primary job field from resume text,
// defaulting when the model is unavailable or answers unusably.
func (s *Service) ExtractJobField(ctx context.Context, resumeText string) string {
	prompt := fmt.Sprintf("Extract the primary job field in 1-2 words from the resume below. Respond with only the field name.\n\nResume: %s", resumeText)
	response, err := s.client.Generate(ctx, prompt, llm.GenerationParams{})
	if err != nil {
		s.log.Warn("job field extraction failed", "error", err)
		return defaultJobField
	}
	field := normalizeJobField(response)
	if field == "" {
		return defaultJobField
	}
	return field
}

// normalizeJobField lowercases and underscores a short model answer;
// rambling answers are rejected.
func normalizeJobField(response string) string {
	field := strings.ToLower(strings.TrimSpace(response))
	field = strings.Trim(field, ".\"'")
	if field == "" || strings.Count(field, " ") > 2 || len(field) > 40 {
		return ""
	}
	return strings.ReplaceAll(field, " ", "_")
}

// defaultQuestions is the fixed plan used when generation fails.
func defaultQuestions() []session.Question {
	return []session.Question{
		{Variable: "min_salary", Text: "What is your minimum acceptable salary?"},
		{Variable: "work_life_balance_weight", Text: "How important is work-life balance to you (1-5)?"},
		{Variable: "compensation_weight", Text: "How important is compensation to you (1-5)?"},
		{Variable: "career_growth_weight", Text: "How important is career growth to you (1-5)?"},
		{Variable: "risk_tolerance", Text: "How willing are you to wait for better offers (1-10)?"},
		{Variable: "job_search_urgency", Text: "How urgently do you need to find a job (1-10)?"},
	}
}

// GenerateQuestions builds a personalized question plan from resume
// text. The model is asked for the standard variables plus a few
// resume-specific extras; unparseable output falls back to the
// default plan so onboarding never fails.
func (s *Service) GenerateQuestions(ctx context.Context, resumeText, jobField string) []session.Question {
	prompt := fmt.Sprintf(`Based on the resume, generate personalized questions for these standard variables:
- min_salary: Minimum acceptable annual salary
- compensation_weight: Importance of compensation (1-5)
- career_growth_weight: Importance of career growth (1-5)
- work_life_balance_weight: Importance of work-life balance (1-5)
- risk_tolerance: Willingness to wait for better offers (1-10)
- job_search_urgency: Urgency to find a new job (1-10)

Add up to 3 extra questions based on the resume, each asking for a 1-5 rating, with unique variable names not in the standard list.
Job field: %s

Format each question exactly as:
Variable: [variable_name]
Question: [question_text]

Resume: %s`, jobField, resumeText)

	response, err := s.client.Generate(ctx, prompt, llm.GenerationParams{})
	if err != nil {
		s.log.Warn("question generation failed, using defaults", "error", err)
		return defaultQuestions()
	}
	questions := parseQuestionPlan(response)
	if len(questions) == 0 {
		s.log.Warn("question plan unparseable, using defaults")
		return defaultQuestions()
	}
	return questions
}

// parseQuestionPlan reads alternating Variable:/Question: lines. A
// Variable line without a following Question line is skipped, as is
// any entry whose variable name fails validation.
func parseQuestionPlan(text string) []session.Question {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var questions []session.Question
	seen := make(map[string]bool)
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "Variable:") {
			continue
		}
		variable, err := validation.SanitizeVariable(cleanPlanField(strings.TrimPrefix(line, "Variable:")))
		if err != nil || seen[variable] {
			continue
		}
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if strings.HasPrefix(next, "Question:") {
				q := cleanPlanField(strings.TrimPrefix(next, "Question:"))
				if q != "" {
					questions = append(questions, session.Question{Variable: variable, Text: q})
					seen[variable] = true
					i++
				}
			}
		}
	}
	return questions
}

func cleanPlanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "[]")
	return strings.TrimSpace(s)
}

// CreateProfile assembles the preference profile from a completed
// session.
func (s *Service) CreateProfile(state *session.State) Profile {
	return Profile{
		UserID:      uuid.NewString(),
		JobField:    state.JobField,
		Preferences: state.Preferences(),
		CreatedAt:   time.Now(),
	}
}

// StartConversation seeds a session from resume text: extracts the
// job field, generates the question plan and returns the state with
// the first question pending.
func (s *Service) StartConversation(ctx context.Context, sessionID, resumeText string) *session.State {
	state := s.sessions.GetOrCreate(sessionID)
	state.JobField = s.ExtractJobField(ctx, resumeText)
	state.Questions = s.GenerateQuestions(ctx, resumeText, state.JobField)
	s.log.Info("conversation started",
		"session_id", sessionID,
		"job_field", state.JobField,
		"questions", len(state.Questions))
	return state
}

// HandleAnswer processes one user answer for the session's current
// question, emitting events for every observable step.
//
// Description:
//
//	The answer is recorded and interpreted. Low confidence within the
//	follow-up budget produces a followup_question event and the
//	conversation stays on the same question. Once confident, or once
//	the budget is exhausted (committing the policy default), the
//	answer is finalized and the next question (or the completed
//	profile) is emitted.
//
// Outputs:
//   - error: only on terminal model failure; an error event with any
//     partial trace has already been emitted by then.
func (s *Service) HandleAnswer(ctx context.Context, state *session.State, emitter *events.Emitter, answer string) error {
	q, ok := state.CurrentQuestion()
	if !ok {
		emitter.Emit(events.TypeError, events.ErrorData{Message: "no question is pending"})
		return fmt.Errorf("session %s has no pending question", state.ID)
	}
	state.RecordResponse(answer)

	pipeline := interpret.NewPipeline(s.client,
		interpret.WithController(state.Controller),
		interpret.WithRegistry(s.registry),
		interpret.WithConfidenceThreshold(state.ConfidenceThreshold),
		interpret.WithStepCallback(func(step react.Step) {
			emitter.Emit(events.TypeReasoningStep, events.ReasoningStepData{
				Variable: q.Variable,
				Step:     step,
			})
		}),
	)

	interpretation, err := pipeline.Interpret(ctx, interpret.Request{
		Variable:  q.Variable,
		Question:  q.Text,
		Responses: state.CurrentResponses,
		Schema:    interpret.SchemaFor(q.Variable),
		JobField:  state.JobField,
		History:   state.History,
	})
	if err != nil {
		errData := events.ErrorData{Message: err.Error()}
		var rerr *interpret.ReasoningError
		if errors.As(err, &rerr) {
			errData.PartialTrace = rerr.Trace
		}
		emitter.Emit(events.TypeError, errData)
		return err
	}

	if pipeline.NeedsFollowup(interpretation) {
		if state.RecordFollowup() {
			followup := interpret.FollowupQuestion(q.Variable, interpret.SchemaFor(q.Variable))
			emitter.Emit(events.TypeFollowupQuestion, events.QuestionData{
				Variable:      q.Variable,
				Question:      followup,
				QuestionIndex: state.CurrentQuestionIndex,
				FollowupCount: state.CurrentFollowups,
			})
			return nil
		}
		// Budget spent: commit the policy default and move on.
		interpretation = interpret.DefaultInterpretation(q.Variable, interpret.SchemaFor(q.Variable))
	}

	emitter.Emit(events.TypeInterpretation, events.InterpretationData{
		Interpretation: interpretation,
		Answer:         answer,
	})
	if err := state.Accept(interpretation); err != nil {
		return err
	}

	if state.Complete() {
		profile := s.CreateProfile(state)
		emitter.Emit(events.TypeProfileCreated, events.ProfileData{
			ProfileID:   profile.UserID,
			JobField:    profile.JobField,
			Preferences: profile.Preferences,
		})
		return nil
	}

	next, _ := state.CurrentQuestion()
	emitter.Emit(events.TypeNextQuestion, events.QuestionData{
		Variable:      next.Variable,
		Question:      next.Text,
		QuestionIndex: state.CurrentQuestionIndex,
	})
	return nil
}
