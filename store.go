package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Store holds all exercise sessions in memory.
type Store struct {
	mu           sync.RWMutex
	arrangements map[string]*ArrangementSession
	matchings    map[string]*MatchingSession

	// newRand supplies the shuffle source of each new session.
	newRand func() *rand.Rand
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		arrangements: make(map[string]*ArrangementSession),
		matchings:    make(map[string]*MatchingSession),
		newRand:      newRand,
	}
}

// CreateArrangement starts an arrangement session on the content words.
func (s *Store) CreateArrangement(c *Content) *ArrangementSession {
	now := time.Now()
	sess := &ArrangementSession{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastSeen:  now,
		game:      NewArrangement(c.Words, s.newRand()),
	}

	s.mu.Lock()
	s.arrangements[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// GetArrangement returns an arrangement session by id.
func (s *Store) GetArrangement(id string) (*ArrangementSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.arrangements[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// CreateMatching starts a matching session on the content pairs.
func (s *Store) CreateMatching(c *Content) *MatchingSession {
	now := time.Now()
	sess := &MatchingSession{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastSeen:  now,
		game:      NewMatching(c.Question, c.Pairs, s.newRand()),
	}

	s.mu.Lock()
	s.matchings[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// GetMatching returns a matching session by id.
func (s *Store) GetMatching(id string) (*MatchingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.matchings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.arrangements) + len(s.matchings)
}

// Sweep drops sessions idle for longer than ttl and returns how many were removed.
func (s *Store) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.arrangements {
		if sess.idleSince().Before(cutoff) {
			delete(s.arrangements, id)
			n++
		}
	}
	for id, sess := range s.matchings {
		if sess.idleSince().Before(cutoff) {
			delete(s.matchings, id)
			n++
		}
	}
	return n
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval, ttl time.Duration, logger *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(ttl); n > 0 {
				logger.Debug("Sessions expirées supprimées", zap.Int("count", n), zap.Int("remaining", s.Len()))
			}
		}
	}
}
