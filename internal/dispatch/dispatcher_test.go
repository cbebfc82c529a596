package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/corridor/internal/plan"
)

// mockAdapter records calls and returns preconfigured results.
type mockAdapter struct {
	capability string
	err        error
	delay      time.Duration

	mu   sync.Mutex
	keys []string
}

func (m *mockAdapter) Capability() string { return m.capability }

func (m *mockAdapter) Execute(ctx context.Context, key string, params map[string]any) (*Result, error) {
	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &Result{Status: "accepted", ReferenceID: "ref-" + key[:8], EchoedPayload: params}, nil
}

func testPlan(ids ...string) *plan.Plan {
	p := &plan.Plan{ID: "01TESTPLAN"}
	for _, id := range ids {
		p.RecommendedActions = append(p.RecommendedActions, plan.RecommendedAction{
			ID:       id,
			Category: CapCreateCase,
		})
	}
	return p
}

func TestDispatch_AllQueued(t *testing.T) {
	t.Parallel()

	adapter := &mockAdapter{capability: CapCreateCase}
	registry := NewRegistry()
	registry.Register(adapter)

	d := NewDispatcher(registry, time.Second, log.Nop(), Hooks{})
	record := d.Dispatch(context.Background(), testPlan("A", "B"))

	if len(record.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(record.Results))
	}
	for _, r := range record.Results {
		if r.Status != plan.StatusQueued {
			t.Errorf("action %s status = %q, want queued", r.ActionID, r.Status)
		}
		if r.ReferenceID == "" {
			t.Errorf("action %s has empty reference id", r.ActionID)
		}
	}
	if record.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", record.Attempts)
	}
}

func TestDispatch_KeysStableAcrossDispatches(t *testing.T) {
	t.Parallel()

	adapter := &mockAdapter{capability: CapCreateCase}
	registry := NewRegistry()
	registry.Register(adapter)

	d := NewDispatcher(registry, time.Second, log.Nop(), Hooks{})
	p := testPlan("A", "B")

	first := d.Dispatch(context.Background(), p)
	second := d.Dispatch(context.Background(), p)

	for i := range first.Results {
		if first.Results[i].IdempotencyKey != second.Results[i].IdempotencyKey {
			t.Errorf("action %s key changed across dispatches: %q vs %q",
				first.Results[i].ActionID, first.Results[i].IdempotencyKey, second.Results[i].IdempotencyKey)
		}
	}

	adapter.mu.Lock()
	defer adapter.mu.Unlock()
	if len(adapter.keys) != 4 {
		t.Fatalf("adapter calls = %d, want 4", len(adapter.keys))
	}
	if adapter.keys[0] != adapter.keys[2] || adapter.keys[1] != adapter.keys[3] {
		t.Error("expected identical keys on re-dispatch")
	}
}

func TestDispatch_PerActionFailureIsolation(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&mockAdapter{capability: CapPlaceHold, err: errors.New("hold system down")})
	registry.Register(&mockAdapter{capability: CapCreateCase})

	p := &plan.Plan{
		ID: "01PARTIAL",
		RecommendedActions: []plan.RecommendedAction{
			{ID: "H", Category: CapPlaceHold},
			{ID: "C", Category: CapCreateCase},
		},
	}

	d := NewDispatcher(registry, time.Second, log.Nop(), Hooks{})
	record := d.Dispatch(context.Background(), p)

	if record.Results[0].Status != plan.StatusFailed {
		t.Errorf("hold status = %q, want failed", record.Results[0].Status)
	}
	if record.Results[0].Error == "" {
		t.Error("expected error message on failed action")
	}
	if record.Results[1].Status != plan.StatusQueued {
		t.Errorf("case status = %q, want queued despite earlier failure", record.Results[1].Status)
	}
}

func TestDispatch_MissingAdapterSkips(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(NewRegistry(), time.Second, log.Nop(), Hooks{})
	record := d.Dispatch(context.Background(), testPlan("A"))

	if record.Results[0].Status != plan.StatusSkipped {
		t.Errorf("status = %q, want skipped", record.Results[0].Status)
	}
}

func TestCapabilityFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category string
		want     string
		ok       bool
	}{
		{"PLACE_SOFT_HOLD", CapPlaceHold, true},
		{"PLACE_HARD_HOLD", CapPlaceHold, true},
		{"CREATE_CASE", CapCreateCase, true},
		{"SEND_COMMUNICATION", CapSendCommunication, true},
		{"FILE_REPORT", CapFileReport, true},
		{"FILE_SAR", CapFileReport, true},
		{"ASSIGN_TEAM", CapAssignTeam, true},
		{"place_hold", CapPlaceHold, true},
		{"Create_Case", CapCreateCase, true},
		{"CLOSE_ACCOUNT", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := CapabilityFor(tt.category)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CapabilityFor(%q) = (%q, %v), want (%q, %v)", tt.category, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDispatch_UpstreamCategoryVocabulary(t *testing.T) {
	t.Parallel()

	hold := &mockAdapter{capability: CapPlaceHold}
	cases := &mockAdapter{capability: CapCreateCase}
	registry := NewRegistry()
	registry.Register(hold)
	registry.Register(cases)

	// analyzers send the uppercase action vocabulary, not capability names
	p := &plan.Plan{
		ID: "01VOCAB",
		RecommendedActions: []plan.RecommendedAction{
			{ID: "hold-1", Category: "PLACE_SOFT_HOLD"},
			{ID: "case-1", Category: "CREATE_CASE"},
		},
	}

	d := NewDispatcher(registry, time.Second, log.Nop(), Hooks{})
	record := d.Dispatch(context.Background(), p)

	for _, r := range record.Results {
		if r.Status != plan.StatusQueued {
			t.Errorf("action %s status = %q, want queued", r.ActionID, r.Status)
		}
	}
	hold.mu.Lock()
	cases.mu.Lock()
	defer hold.mu.Unlock()
	defer cases.mu.Unlock()
	if len(hold.keys) != 1 || len(cases.keys) != 1 {
		t.Errorf("adapter calls = %d/%d, want 1/1", len(hold.keys), len(cases.keys))
	}
}

func TestDispatch_UnresolvableCategorySkips(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&mockAdapter{capability: CapCreateCase})

	p := &plan.Plan{
		ID: "01NOCAP",
		RecommendedActions: []plan.RecommendedAction{
			{ID: "X", Category: "CLOSE_ACCOUNT"},
		},
	}

	d := NewDispatcher(registry, time.Second, log.Nop(), Hooks{})
	record := d.Dispatch(context.Background(), p)

	if record.Results[0].Status != plan.StatusSkipped {
		t.Errorf("status = %q, want skipped", record.Results[0].Status)
	}
	if record.Results[0].Error == "" {
		t.Error("expected error naming the unserved category")
	}
}

func TestDispatch_CanonicalOrderRespected(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var order []string

	registry := NewRegistry()
	for _, capability := range Capabilities() {
		capability := capability
		registry.Register(orderAdapter{capability: capability, record: func() {
			mu.Lock()
			order = append(order, capability)
			mu.Unlock()
		}})
	}

	p := &plan.Plan{
		ID: "01ORDER",
		RecommendedActions: []plan.RecommendedAction{
			{ID: "H", Category: CapPlaceHold},
			{ID: "C", Category: CapCreateCase},
			{ID: "T", Category: CapAssignTeam},
		},
	}

	d := NewDispatcher(registry, time.Second, log.Nop(), Hooks{})
	d.Dispatch(context.Background(), p)

	mu.Lock()
	defer mu.Unlock()
	want := []string{CapPlaceHold, CapCreateCase, CapAssignTeam}
	for i, capability := range want {
		if order[i] != capability {
			t.Fatalf("call order = %v, want %v", order, want)
		}
	}
}

type orderAdapter struct {
	capability string
	record     func()
}

func (a orderAdapter) Capability() string { return a.capability }
func (a orderAdapter) Execute(context.Context, string, map[string]any) (*Result, error) {
	a.record()
	return &Result{Status: "accepted", ReferenceID: "r"}, nil
}

func TestDispatch_TimeoutFailsAction(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&mockAdapter{capability: CapCreateCase, delay: 500 * time.Millisecond})

	d := NewDispatcher(registry, 20*time.Millisecond, log.Nop(), Hooks{})
	record := d.Dispatch(context.Background(), testPlan("SLOW"))

	if record.Results[0].Status != plan.StatusFailed {
		t.Errorf("status = %q, want failed on timeout", record.Results[0].Status)
	}
}

func TestDispatch_HooksCalled(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&mockAdapter{capability: CapCreateCase})

	var mu sync.Mutex
	calls := make(map[plan.ActionStatus]int)
	hooks := Hooks{OnAdapterCall: func(_ string, status plan.ActionStatus, _ float64) {
		mu.Lock()
		defer mu.Unlock()
		calls[status]++
	}}

	p := &plan.Plan{
		ID: "01HOOKS",
		RecommendedActions: []plan.RecommendedAction{
			{ID: "A", Category: CapCreateCase},
			{ID: "B", Category: CapFileReport}, // no adapter
		},
	}

	d := NewDispatcher(registry, time.Second, log.Nop(), hooks)
	d.Dispatch(context.Background(), p)

	mu.Lock()
	defer mu.Unlock()
	if calls[plan.StatusQueued] != 1 || calls[plan.StatusSkipped] != 1 {
		t.Errorf("hook calls = %v, want 1 queued and 1 skipped", calls)
	}
}

func TestKey_Deterministic(t *testing.T) {
	t.Parallel()

	a := Key("plan-1", "action-1")
	b := Key("plan-1", "action-1")
	if a != b {
		t.Errorf("Key not deterministic: %q vs %q", a, b)
	}
	if a == Key("plan-2", "action-1") || a == Key("plan-1", "action-2") {
		t.Error("distinct (plan, action) pairs must yield distinct keys")
	}
	if len(a) != 32 {
		t.Errorf("key length = %d, want 32 hex chars", len(a))
	}
}

func TestMerge_DeltaOverridesNonQueued(t *testing.T) {
	t.Parallel()

	prev := &plan.ExecutionRecord{
		Attempts: 1,
		Results: []plan.ActionResult{
			{ActionID: "A", Status: plan.StatusQueued, ReferenceID: "ref-a"},
			{ActionID: "B", Status: plan.StatusFailed, Error: "down"},
		},
	}
	delta := &plan.ExecutionRecord{
		Attempts: 1,
		Results: []plan.ActionResult{
			{ActionID: "A", Status: plan.StatusFailed, Error: "should not replace queued"},
			{ActionID: "B", Status: plan.StatusQueued, ReferenceID: "ref-b"},
		},
	}

	merged := Merge(prev, delta)

	if merged.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", merged.Attempts)
	}
	if merged.Results[0].Status != plan.StatusQueued || merged.Results[0].ReferenceID != "ref-a" {
		t.Errorf("action A = %+v, want previous queued result kept", merged.Results[0])
	}
	if merged.Results[1].Status != plan.StatusQueued || merged.Results[1].ReferenceID != "ref-b" {
		t.Errorf("action B = %+v, want delta retry result", merged.Results[1])
	}
}

func TestMerge_NilInputs(t *testing.T) {
	t.Parallel()

	rec := &plan.ExecutionRecord{Attempts: 1}
	if Merge(nil, rec) != rec {
		t.Error("Merge(nil, rec) should return rec")
	}
	if Merge(rec, nil) != rec {
		t.Error("Merge(rec, nil) should return rec")
	}
}

func TestMerge_DeltaOnlyActionsAppended(t *testing.T) {
	t.Parallel()

	prev := &plan.ExecutionRecord{
		Attempts: 1,
		Results:  []plan.ActionResult{{ActionID: "A", Status: plan.StatusQueued}},
	}
	delta := &plan.ExecutionRecord{
		Attempts: 1,
		Results:  []plan.ActionResult{{ActionID: "NEW", Status: plan.StatusQueued}},
	}

	merged := Merge(prev, delta)
	if len(merged.Results) != 2 || merged.Results[1].ActionID != "NEW" {
		t.Errorf("results = %+v, want delta-only action appended", merged.Results)
	}
}
