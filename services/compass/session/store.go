// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"log/slog"
	"sync"
)

// Store is the in-memory session registry. States are created on
// first reference and explicitly destroyed on close or disconnect.
//
// Thread Safety:
//
//	Safe for concurrent use. The returned *State itself is owned by
//	the single conversation goroutine that drives it.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*State
	log      *slog.Logger
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*State),
		log:      slog.Default().With("component", "session"),
	}
}

// GetOrCreate returns the state for a session id, creating it on
// first reference.
func (st *Store) GetOrCreate(id string) *State {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		return s
	}
	s := newState(id)
	st.sessions[id] = s
	st.log.Info("session created", "session_id", id)
	return s
}

// Get returns the state for a session id if it exists.
func (st *Store) Get(id string) (*State, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Destroy removes a session's state. Idempotent.
func (st *Store) Destroy(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; ok {
		delete(st.sessions, id)
		st.log.Info("session destroyed", "session_id", id)
	}
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
