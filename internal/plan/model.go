package plan

import (
	"maps"
	"slices"
	"time"
)

// RiskTier classifies corridor risk.
type RiskTier string

const (
	TierLow    RiskTier = "LOW"
	TierMedium RiskTier = "MEDIUM"
	TierHigh   RiskTier = "HIGH"
)

// ActionStatus tracks the dispatch outcome of a single recommended action.
type ActionStatus string

const (
	// StatusQueued means the downstream adapter accepted the action
	StatusQueued ActionStatus = "queued"

	// StatusFailed means the adapter call errored; safe to retry
	StatusFailed ActionStatus = "failed"

	// StatusSkipped means no adapter handles the action's category
	StatusSkipped ActionStatus = "skipped"
)

// RecommendedAction is one action included in a plan. It is a snapshot copied
// from the upstream payload; mutating the original payload after plan
// construction cannot corrupt an issued plan.
type RecommendedAction struct {
	ID               string         `json:"id"`
	Category         string         `json:"category"`
	Confidence       float64        `json:"confidence"`
	ApprovalRequired bool           `json:"approval_required"`
	Parameters       map[string]any `json:"parameters,omitempty"`
}

// Summary is the risk roll-up of a plan.
type Summary struct {
	CorridorRisk    RiskTier       `json:"corridor_risk"`
	ActionCounts    map[string]int `json:"action_counts"`
	SourceActionIDs []string       `json:"source_action_ids"`
}

// ActionResult records the dispatch outcome of one action.
type ActionResult struct {
	ActionID       string       `json:"action_id"`
	Category       string       `json:"category"`
	IdempotencyKey string       `json:"idempotency_key"`
	Status         ActionStatus `json:"status"`
	ReferenceID    string       `json:"reference_id,omitempty"`
	Error          string       `json:"error,omitempty"`
	Duration       float64      `json:"duration_seconds,omitempty"`
}

// ExecutionRecord aggregates adapter results for a plan. Partial failure is a
// representable outcome, not an error.
type ExecutionRecord struct {
	Attempts    int            `json:"attempts"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	Results     []ActionResult `json:"results"`
}

// ActionSource identifies which upstream recommendation shape produced the
// plan's action ordering.
type ActionSource string

const (
	// SourcePrimary means primary_action + alternatives ordering
	SourcePrimary ActionSource = "primary"

	// SourceRanked means the pre-ranked list was trusted verbatim
	SourceRanked ActionSource = "ranked"

	// SourceNone means no usable recommendation was present
	SourceNone ActionSource = "none"
)

// Plan is the triage output artifact. Immutable after construction except for
// the execution record attached by the dispatcher.
type Plan struct {
	ID                 string              `json:"id"`
	Fingerprint        string              `json:"fingerprint,omitempty"`
	SchemaVersion      string              `json:"schema_version"`
	Summary            Summary             `json:"summary"`
	RecommendedActions []RecommendedAction `json:"recommended_actions"`
	ApprovalsRequired  bool                `json:"approvals_required"`
	NeedsHumanReview   bool                `json:"needs_human_review"`
	ActionSource       ActionSource        `json:"action_source"`
	CreatedAt          time.Time           `json:"created_at"`
	Execution          *ExecutionRecord    `json:"execution,omitempty"`
}

// Clone returns a deep copy sharing no mutable state with the original.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Summary.ActionCounts = maps.Clone(p.Summary.ActionCounts)
	cp.Summary.SourceActionIDs = slices.Clone(p.Summary.SourceActionIDs)
	if p.RecommendedActions != nil {
		cp.RecommendedActions = make([]RecommendedAction, len(p.RecommendedActions))
		for i, a := range p.RecommendedActions {
			a.Parameters = copyParams(a.Parameters)
			cp.RecommendedActions[i] = a
		}
	}
	if p.Execution != nil {
		ex := *p.Execution
		ex.Results = slices.Clone(p.Execution.Results)
		cp.Execution = &ex
	}
	return &cp
}
