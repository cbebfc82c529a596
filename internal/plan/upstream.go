package plan

// UpstreamAction is one action recommendation from the upstream analyzer.
type UpstreamAction struct {
	ID               string         `json:"id"`
	Category         string         `json:"category"`
	Confidence       float64        `json:"confidence"`
	ApprovalRequired bool           `json:"approval_required"`
	Parameters       map[string]any `json:"parameters,omitempty"`
}

// UpstreamActionPayload is the analyzer's recommendation envelope. Producers
// send either a primary action with alternatives or a pre-ranked list; the
// duality is resolved once at ingestion via Resolve.
type UpstreamActionPayload struct {
	PrimaryAction *UpstreamAction  `json:"primary_action,omitempty"`
	Alternatives  []UpstreamAction `json:"alternatives,omitempty"`
	RankedActions []UpstreamAction `json:"ranked_actions,omitempty"`
}

// Resolve returns the canonical ordered action list and which shape produced
// it. A primary action takes precedence over ranked_actions when a producer
// populates both; alternatives and ranked lists keep their input order.
func (p *UpstreamActionPayload) Resolve() ([]UpstreamAction, ActionSource) {
	if p == nil {
		return nil, SourceNone
	}
	if p.PrimaryAction != nil {
		actions := make([]UpstreamAction, 0, 1+len(p.Alternatives))
		actions = append(actions, *p.PrimaryAction)
		actions = append(actions, p.Alternatives...)
		return actions, SourcePrimary
	}
	if len(p.RankedActions) > 0 {
		return p.RankedActions, SourceRanked
	}
	return nil, SourceNone
}
