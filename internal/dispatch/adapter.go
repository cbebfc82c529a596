package dispatch

import (
	"context"
	"sort"
	"strings"
)

// Capability names for the downstream integrations a plan action can target.
const (
	CapCreateCase        = "create_case"
	CapPlaceHold         = "place_hold"
	CapSendCommunication = "send_communication"
	CapFileReport        = "file_report"
	CapAssignTeam        = "assign_team"
)

// Capabilities returns the full capability set in canonical order.
func Capabilities() []string {
	return []string{CapPlaceHold, CapCreateCase, CapSendCommunication, CapFileReport, CapAssignTeam}
}

// capabilityByCategory maps upstream action categories to the capability
// serving them. Analyzers emit an uppercase action vocabulary
// (PLACE_SOFT_HOLD, CREATE_CASE, ...) that is finer-grained than the
// adapter surface: both hold variants land on the place_hold integration.
var capabilityByCategory = map[string]string{
	"place_soft_hold":    CapPlaceHold,
	"place_hard_hold":    CapPlaceHold,
	CapPlaceHold:         CapPlaceHold,
	CapCreateCase:        CapCreateCase,
	CapSendCommunication: CapSendCommunication,
	CapFileReport:        CapFileReport,
	"file_sar":           CapFileReport,
	CapAssignTeam:        CapAssignTeam,
}

// CapabilityFor resolves an action category to the adapter capability that
// serves it. Matching is case-insensitive. Returns false for categories with
// no downstream integration.
func CapabilityFor(category string) (string, bool) {
	capability, ok := capabilityByCategory[strings.ToLower(category)]
	return capability, ok
}

// Result is the uniform adapter response shape. Adapters are substitutable
// (stub, sandbox, live) as long as they honour it.
type Result struct {
	Status        string         `json:"status"`
	ReferenceID   string         `json:"reference_id"`
	EchoedPayload map[string]any `json:"echoed_payload,omitempty"`
}

// Adapter executes one action category against a downstream system. Execute
// must be idempotent per key: repeating a call with a key it has already seen
// must not create a second downstream effect.
type Adapter interface {
	Capability() string
	Execute(ctx context.Context, idempotencyKey string, params map[string]any) (*Result, error)
}

// Registry maps action categories to adapter implementations, chosen at
// process start.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter, keyed by its capability.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Capability()] = a
}

// Get retrieves the adapter for a capability.
func (r *Registry) Get(capability string) (Adapter, bool) {
	a, ok := r.adapters[capability]
	return a, ok
}

// Registered lists the capabilities with a bound adapter, sorted.
func (r *Registry) Registered() []string {
	out := make([]string, 0, len(r.adapters))
	for capability := range r.adapters {
		out = append(out, capability)
	}
	sort.Strings(out)
	return out
}
