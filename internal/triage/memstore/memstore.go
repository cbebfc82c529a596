// Package memstore provides an in-memory implementation of triage.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/linnemanlabs/corridor/internal/plan"
)

// Store holds issued plans in memory. Suitable for dev/testing.
type Store struct {
	mu    sync.RWMutex
	plans map[string]*plan.Plan // plan ID -> plan
	seen  map[string]string     // request fingerprint -> plan ID (dedup)
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		plans: make(map[string]*plan.Plan),
		seen:  make(map[string]string),
	}
}

// Get retrieves a plan by its ID. Returns a deep copy.
func (s *Store) Get(_ context.Context, id string) (*plan.Plan, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, false, nil
	}
	return p.Clone(), true, nil
}

// GetByFingerprint retrieves a plan by request fingerprint, for
// deduplication. Returns a deep copy.
func (s *Store) GetByFingerprint(_ context.Context, fp string) (*plan.Plan, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.seen[fp]
	if !ok {
		return nil, false, nil
	}
	return s.plans[id].Clone(), true, nil
}

// Put stores a deep copy of the plan.
func (s *Store) Put(_ context.Context, p *plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.ID] = p.Clone()
	if p.Fingerprint != "" {
		s.seen[p.Fingerprint] = p.ID
	}
	return nil
}
