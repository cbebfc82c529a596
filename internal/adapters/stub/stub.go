// Package stub provides an in-memory execution adapter for development and
// tests. It deduplicates by idempotency key: a repeated key returns the
// original reference without creating a new downstream state transition.
package stub

import (
	"context"
	"fmt"
	"sync"

	"github.com/linnemanlabs/corridor/internal/dispatch"
)

// Adapter records executed actions in memory.
type Adapter struct {
	capability string

	mu          sync.Mutex
	seen        map[string]string // idempotency key -> reference id
	transitions int
	duplicates  int
}

// New creates a stub adapter for one capability.
func New(capability string) *Adapter {
	return &Adapter{
		capability: capability,
		seen:       make(map[string]string),
	}
}

// Capability implements dispatch.Adapter.
func (a *Adapter) Capability() string {
	return a.capability
}

// Execute implements dispatch.Adapter. The first call for a key creates a
// reference; subsequent calls return the existing one with status duplicate.
func (a *Adapter) Execute(_ context.Context, idempotencyKey string, params map[string]any) (*dispatch.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ref, ok := a.seen[idempotencyKey]; ok {
		a.duplicates++
		return &dispatch.Result{Status: "duplicate", ReferenceID: ref, EchoedPayload: params}, nil
	}

	a.transitions++
	ref := fmt.Sprintf("%s-%06d", a.capability, a.transitions)
	a.seen[idempotencyKey] = ref
	return &dispatch.Result{Status: "accepted", ReferenceID: ref, EchoedPayload: params}, nil
}

// Transitions reports how many distinct downstream states were created.
func (a *Adapter) Transitions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transitions
}

// Duplicates reports how many calls were deduplicated by key.
func (a *Adapter) Duplicates() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duplicates
}
