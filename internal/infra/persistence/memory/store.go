// Package memory implements the run-record store in process memory. The
// durable backends embed it and layer persistence over the same semantics.
package memory

import (
	"context"
	"sort"
	"sync"

	"platebind/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.RunStore = (*Store)(nil)

// Store keeps run records in a map guarded by a mutex. SaveRun upserts, so a
// run transitions in place from running to its terminal status.
type Store struct {
	mu   sync.RWMutex
	runs map[string]domain.RunRecord
}

// NewStore returns an empty in-memory run store.
func NewStore() *Store {
	return &Store{runs: make(map[string]domain.RunRecord)}
}

// SaveRun inserts or replaces the record keyed by its ID.
func (s *Store) SaveRun(_ context.Context, record domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[record.ID] = record
	return nil
}

// GetRun returns the record and whether it exists.
func (s *Store) GetRun(_ context.Context, id string) (domain.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[id]
	return rec, ok, nil
}

// ListRuns returns all records ordered by start time, then ID for stability.
func (s *Store) ListRuns(_ context.Context) ([]domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// ImportRuns seeds the store from a snapshot, replacing current contents.
func (s *Store) ImportRuns(records []domain.RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = make(map[string]domain.RunRecord, len(records))
	for _, rec := range records {
		s.runs[rec.ID] = rec
	}
}
