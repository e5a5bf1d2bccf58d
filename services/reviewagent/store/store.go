// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store provides the in-process analysis store and the
// fix-application workflow that mutates stored analyses.
//
// # Description
//
// The store is the only shared mutable state in the review agent. One
// instance is constructed by the composition root and handed by reference
// to every consumer; there are no package-level singletons. All mutation
// goes through Put, Mutate, and ApplyFix. Get hands out copies, so no
// caller ever holds a reference into the store's own record.
//
// # Concurrency
//
// The identifier map is guarded by an RWMutex; each entry additionally
// carries its own mutex so that read-mutate-write sequences on one
// identifier are serialized while operations on distinct identifiers
// proceed independently.
//
// # Capacity
//
// By default nothing ever expires, matching a store that lives for the
// process lifetime. An optional TTL sweeper can be enabled via WithTTL for
// long-running deployments.
package store

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianReview/services/reviewagent/datatypes"
)

// Sentinel errors for the caller-visible not-found outcomes. These are
// distinct from validation failures and must be matched with errors.Is.
var (
	// ErrNotFound is returned when no analysis exists for an identifier.
	ErrNotFound = errors.New("analysis not found")

	// ErrFixNotFound is returned when the analysis exists but has no
	// auto-fix with the requested identifier.
	ErrFixNotFound = errors.New("fix not found")
)

// sweepInterval is how often the TTL sweeper scans for expired entries.
const sweepInterval = time.Minute

// entry is one stored analysis plus its per-identifier mutation lock.
type entry struct {
	mu       sync.Mutex
	analysis *datatypes.Analysis
	storedAt time.Time
}

// AnalysisStore maps analysis identifiers to Analysis records.
type AnalysisStore struct {
	mu      sync.RWMutex
	entries map[string]*entry

	ttl  time.Duration
	stop chan struct{}
	once sync.Once
}

// Option configures an AnalysisStore.
type Option func(*AnalysisStore)

// WithTTL enables background expiry of stored analyses. Entries older than
// ttl are removed by a sweeper goroutine. This changes observable capacity
// behavior relative to the default keep-forever store, so it is opt-in and
// off unless configured explicitly.
func WithTTL(ttl time.Duration) Option {
	return func(s *AnalysisStore) {
		s.ttl = ttl
	}
}

// New creates an empty AnalysisStore. When a TTL option is supplied the
// sweeper goroutine starts immediately; call Close to stop it.
func New(opts ...Option) *AnalysisStore {
	s := &AnalysisStore{
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl > 0 {
		go s.sweep()
	}
	return s
}

// Close stops the TTL sweeper, if one is running. Safe to call multiple
// times and safe on stores without a TTL.
func (s *AnalysisStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

// Put stores an analysis under its identifier, overwriting any previous
// record. The store keeps its own copy; later changes to the caller's
// value do not leak in.
func (s *AnalysisStore) Put(id string, analysis *datatypes.Analysis) {
	clone := cloneAnalysis(analysis)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[id]; ok {
		existing.mu.Lock()
		existing.analysis = clone
		existing.storedAt = time.Now()
		existing.mu.Unlock()
		return
	}
	s.entries[id] = &entry{analysis: clone, storedAt: time.Now()}
}

// Get returns a copy of the stored analysis for id. The boolean result
// distinguishes an absent identifier from a present record.
func (s *AnalysisStore) Get(id string) (*datatypes.Analysis, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneAnalysis(e.analysis), true
}

// Len reports how many analyses are currently stored.
func (s *AnalysisStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Mutate runs fn against the stored analysis for id under the entry's
// lock. The read-mutate-write sequence is serialized per identifier;
// concurrent Mutate calls on distinct identifiers do not contend. If fn
// returns an error the mutation is kept only to the extent fn already
// applied it; fn must not partially mutate before failing.
func (s *AnalysisStore) Mutate(id string, fn func(*datatypes.Analysis) error) error {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.analysis)
}

// sweep periodically removes entries older than the configured TTL.
func (s *AnalysisStore) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			var expired []string

			s.mu.Lock()
			for id, e := range s.entries {
				if e.storedAt.Before(cutoff) {
					delete(s.entries, id)
					expired = append(expired, id)
				}
			}
			s.mu.Unlock()

			if len(expired) > 0 {
				slog.Info("expired analyses removed", "count", len(expired))
			}
		}
	}
}

// cloneAnalysis deep-copies an analysis so store internals never alias
// caller-held memory.
func cloneAnalysis(a *datatypes.Analysis) *datatypes.Analysis {
	clone := *a
	clone.Issues = append([]datatypes.Issue(nil), a.Issues...)
	clone.AutoFixes = append([]datatypes.AutoFix(nil), a.AutoFixes...)
	clone.TimeMachine.PredictedIssues = append([]string(nil), a.TimeMachine.PredictedIssues...)
	return &clone
}
