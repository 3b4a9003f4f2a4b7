package main

import (
	"sync"
	"time"
)

// ArrangementSession is one browser view of the arrangement exercise.
type ArrangementSession struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu       sync.Mutex
	lastSeen time.Time
	game     *Arrangement
}

// Do applies fn to the exercise under the session lock and returns the
// resulting view.
func (s *ArrangementSession) Do(fn func(a *Arrangement)) ArrangementView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeen = time.Now()
	if fn != nil {
		fn(s.game)
	}
	return s.game.View()
}

// View returns the current view state.
func (s *ArrangementSession) View() ArrangementView {
	return s.Do(nil)
}

func (s *ArrangementSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// MatchingSession is one browser view of the matching exercise.
type MatchingSession struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu       sync.Mutex
	lastSeen time.Time
	game     *Matching
}

// Do applies fn to the exercise under the session lock and returns the
// resulting view.
func (s *MatchingSession) Do(fn func(m *Matching)) MatchingView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeen = time.Now()
	if fn != nil {
		fn(s.game)
	}
	return s.game.View()
}

// View returns the current view state.
func (s *MatchingSession) View() MatchingView {
	return s.Do(nil)
}

func (s *MatchingSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
