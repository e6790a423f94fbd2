// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handler is a function that processes events.
type Handler func(event *Event)

// Subscription ties a handler to an optional type allowlist.
type Subscription struct {
	ID      string
	Handler Handler
	Types   []Type
}

// Emitter broadcasts session events to subscribers and keeps a
// bounded replay buffer.
//
// Thread Safety: Emitter is safe for concurrent use.
type Emitter struct {
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
	buffer        []Event
	bufferSize    int
	sessionID     string
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithBufferSize sets the replay buffer size.
func WithBufferSize(size int) EmitterOption {
	return func(e *Emitter) {
		if size > 0 {
			e.bufferSize = size
		}
	}
}

// WithSessionID stamps every event with a session ID.
func WithSessionID(id string) EmitterOption {
	return func(e *Emitter) { e.sessionID = id }
}

// NewEmitter creates an event emitter.
func NewEmitter(opts ...EmitterOption) *Emitter {
	e := &Emitter{
		subscriptions: make(map[string]*Subscription),
		bufferSize:    256,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.buffer = make([]Event, 0, e.bufferSize)
	return e
}

// Subscribe registers a handler. With no types given the handler
// receives every event. Returns the subscription ID.
func (e *Emitter) Subscribe(handler Handler, types ...Type) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	sub := &Subscription{ID: uuid.NewString(), Handler: handler, Types: types}
	e.subscriptions[sub.ID] = sub
	return sub.ID
}

// Unsubscribe removes a subscription. Returns true when it existed.
func (e *Emitter) Unsubscribe(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.subscriptions[id]; ok {
		delete(e.subscriptions, id)
		return true
	}
	return false
}

// Emit broadcasts an event to all matching subscribers and appends it
// to the replay buffer, evicting the oldest entry on overflow. Handler
// panics are recovered so one failing subscriber cannot kill the
// stream.
func (e *Emitter) Emit(eventType Type, data any) {
	e.mu.RLock()
	sessionID := e.sessionID
	subs := make([]*Subscription, 0, len(e.subscriptions))
	for _, sub := range e.subscriptions {
		subs = append(subs, sub)
	}
	e.mu.RUnlock()

	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Timestamp: time.Now(),
		Data:      data,
	}

	e.mu.Lock()
	if len(e.buffer) >= e.bufferSize {
		e.buffer = e.buffer[1:]
	}
	e.buffer = append(e.buffer, event)
	e.mu.Unlock()

	for _, sub := range subs {
		if matches(sub, event.Type) {
			invoke(sub.Handler, &event)
		}
	}
}

// Buffered returns a copy of the replay buffer, oldest first.
func (e *Emitter) Buffered() []Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Event, len(e.buffer))
	copy(out, e.buffer)
	return out
}

func matches(sub *Subscription, t Type) bool {
	if len(sub.Types) == 0 {
		return true
	}
	for _, want := range sub.Types {
		if want == t {
			return true
		}
	}
	return false
}

func invoke(handler Handler, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "event_type", event.Type, "panic", r)
		}
	}()
	handler(event)
}
