package feedback

import (
	"context"
	"sync"
)

// MemStore is an in-memory feedback store for development and tests.
type MemStore struct {
	mu   sync.RWMutex
	byID map[string]*Feedback
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{byID: make(map[string]*Feedback)}
}

// PutFeedback implements Store.
func (s *MemStore) PutFeedback(_ context.Context, fb *Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *fb
	s.byID[fb.ID] = &cp
	return nil
}

// ForPlan returns stored feedback for a plan id, in insertion-independent
// order. Intended for tests and local inspection.
func (s *MemStore) ForPlan(planID string) []*Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Feedback
	for _, fb := range s.byID {
		if fb.PlanID == planID {
			cp := *fb
			out = append(out, &cp)
		}
	}
	return out
}
