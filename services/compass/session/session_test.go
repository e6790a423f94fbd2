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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCompass/services/compass/interpret"
)

func seededState(t *testing.T) *State {
	t.Helper()
	s := NewStore().GetOrCreate("s1")
	s.Questions = []Question{
		{Variable: "min_salary", Text: "What minimum salary would you accept?"},
		{Variable: "risk_tolerance", Text: "How long are you willing to wait?"},
	}
	return s
}

func TestAccept_AdvancesAndResetsCounters(t *testing.T) {
	s := seededState(t)
	s.RecordResponse("40k")
	require.True(t, s.RecordFollowup())
	s.RecordResponse("I meant £40,000 a year")

	err := s.Accept(interpret.Interpretation{Value: 40000, Confidence: 0.85})

	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentQuestionIndex)
	assert.Equal(t, 0, s.CurrentFollowups)
	assert.Empty(t, s.CurrentResponses)
	require.Len(t, s.UserData, 1)
	assert.Equal(t, "min_salary", s.UserData[0].Variable)
	assert.Equal(t, "I meant £40,000 a year", s.UserData[0].Answer)
}

func TestQuestionIndexOnlyMovesForward(t *testing.T) {
	s := seededState(t)
	s.RecordResponse("40k")
	require.NoError(t, s.Accept(interpret.Interpretation{Value: 40000, Confidence: 0.8}))
	s.RecordResponse("7")
	require.NoError(t, s.Accept(interpret.Interpretation{Value: 7, Confidence: 0.8}))

	assert.True(t, s.Complete())
	assert.Equal(t, 2, s.CurrentQuestionIndex)

	// No further questions; accepting again must fail rather than wrap.
	err := s.Accept(interpret.Interpretation{Value: 1, Confidence: 0.5})
	assert.Error(t, err)
	assert.Equal(t, 2, s.CurrentQuestionIndex)
}

func TestFollowupBudget(t *testing.T) {
	s := seededState(t)

	assert.True(t, s.RecordFollowup())
	assert.True(t, s.RecordFollowup())
	assert.False(t, s.RecordFollowup())
	assert.True(t, s.FollowupsExhausted())
}

func TestRecordResponse_MirrorsHistoryAndResetsConsecutive(t *testing.T) {
	s := seededState(t)
	s.Controller.Increment()
	s.Controller.Increment()

	s.RecordResponse("about 40k")

	require.Len(t, s.History, 1)
	assert.Equal(t, "What minimum salary would you accept?", s.History[0].Question)
	consecutive, total := s.Controller.Counters()
	assert.Equal(t, 0, consecutive)
	assert.Equal(t, 2, total)
}

func TestPreferences(t *testing.T) {
	s := seededState(t)
	s.RecordResponse("40k")
	require.NoError(t, s.Accept(interpret.Interpretation{Value: 40000, Confidence: 0.8}))

	prefs := s.Preferences()
	assert.Equal(t, 40000.0, prefs["min_salary"])
}

func TestStore_Lifecycle(t *testing.T) {
	store := NewStore()
	a := store.GetOrCreate("a")
	again := store.GetOrCreate("a")
	assert.Same(t, a, again)
	assert.Equal(t, 1, store.Len())

	store.Destroy("a")
	_, ok := store.Get("a")
	assert.False(t, ok)
	store.Destroy("a") // idempotent
	assert.Equal(t, 0, store.Len())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.GetOrCreate("shared")
			store.Len()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, store.Len())
}

func TestSessionsUseIsolatedControllers(t *testing.T) {
	store := NewStore()
	a := store.GetOrCreate("a")
	b := store.GetOrCreate("b")

	a.Controller.Track("min_salary", "40000", 0.9)
	a.Controller.Track("min_salary", "40000", 0.9)

	proceedA, _ := a.Controller.ShouldContinue("min_salary")
	proceedB, reasonB := b.Controller.ShouldContinue("min_salary")

	assert.False(t, proceedA)
	assert.True(t, proceedB)
	assert.Equal(t, "Initial reasoning", reasonB)
}

func TestNewSessionID_Unique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
	assert.Len(t, NewSessionID(), 36)
}
