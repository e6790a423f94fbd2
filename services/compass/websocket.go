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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/AleutianCompass/services/compass/events"
	"github.com/AleutianAI/AleutianCompass/services/compass/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024 * 1024,
	WriteBufferSize: 1024 * 1024,
}

func sendJSON(ws *websocket.Conn, v interface{}) error {
	err := ws.WriteJSON(v)
	if err != nil {
		slog.Warn("Failed to write WebSocket JSON", "error", err)
	}
	return err
}

// HandleConversation runs one onboarding conversation per socket.
//
// Description:
//
//	The client opens the socket, receives a session ID, then drives
//	the conversation with "start" (resume text) and "answer"
//	messages. Every observable step of the interpretation flows back
//	as an event. The session is destroyed when the socket closes.
func HandleConversation(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()

		sessionID := session.NewSessionID()
		slog.Info("New conversation session started", "sessionID", sessionID)
		defer svc.Sessions().Destroy(sessionID)

		emitter := events.NewEmitter(events.WithSessionID(sessionID))
		sub := emitter.Subscribe(func(ev *events.Event) {
			// Write errors terminate the read loop via the closed conn.
			_ = sendJSON(ws, ev)
		})
		defer emitter.Unsubscribe(sub)

		if err := sendJSON(ws, map[string]interface{}{
			"type":       "session_created",
			"session_id": sessionID,
		}); err != nil {
			return
		}

		for {
			var req WSRequest
			if err := ws.ReadJSON(&req); err != nil {
				slog.Info("Conversation client disconnected", "sessionID", sessionID, "error", err.Error())
				break
			}
			ctx := c.Request.Context()

			switch req.Type {
			case "start":
				state := svc.StartConversation(ctx, sessionID, req.ResumeText)
				emitter.Emit(events.TypeSessionStart, map[string]interface{}{
					"job_field":      state.JobField,
					"question_count": len(state.Questions),
				})
				if q, ok := state.CurrentQuestion(); ok {
					emitter.Emit(events.TypeNextQuestion, events.QuestionData{
						Variable:      q.Variable,
						Question:      q.Text,
						QuestionIndex: state.CurrentQuestionIndex,
					})
				}

			case "answer":
				state, ok := svc.Sessions().Get(sessionID)
				if !ok {
					emitter.Emit(events.TypeError, events.ErrorData{Message: "session not started"})
					continue
				}
				if err := svc.HandleAnswer(ctx, state, emitter, req.Text); err != nil {
					slog.Warn("answer handling failed", "sessionID", sessionID, "error", err)
				}

			case "close":
				emitter.Emit(events.TypeSessionEnd, nil)
				return

			default:
				emitter.Emit(events.TypeError, events.ErrorData{
					Message: "unknown message type: " + req.Type,
				})
			}
		}
	}
}
