package plan

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/corridor/internal/contract"
)

// Build constructs a Plan from a validated screening result and the upstream
// action recommendation. Construction always succeeds: a malformed or absent
// recommendation yields an empty plan flagged for human review rather than an
// error, since blocking triage entirely is worse than manual routing.
func Build(screening *contract.ScreeningResult, upstream *UpstreamActionPayload) *Plan {
	actions, source := upstream.Resolve()

	recommended := make([]RecommendedAction, 0, len(actions))
	sourceIDs := make([]string, 0, len(actions))
	counts := make(map[string]int, len(actions))
	approvals := false

	for _, a := range actions {
		recommended = append(recommended, RecommendedAction{
			ID:               a.ID,
			Category:         a.Category,
			Confidence:       a.Confidence,
			ApprovalRequired: a.ApprovalRequired,
			Parameters:       copyParams(a.Parameters),
		})
		sourceIDs = append(sourceIDs, a.ID)
		counts[a.Category]++
		// one approval-requiring action forces sign-off for the whole plan
		approvals = approvals || a.ApprovalRequired
	}

	return &Plan{
		ID:            ulid.Make().String(),
		SchemaVersion: screening.SchemaVersion,
		Summary: Summary{
			CorridorRisk:    ClassifyCorridorRisk(screening.Decision, screening.Corridor),
			ActionCounts:    counts,
			SourceActionIDs: sourceIDs,
		},
		RecommendedActions: recommended,
		ApprovalsRequired:  approvals,
		NeedsHumanReview:   source == SourceNone,
		ActionSource:       source,
		CreatedAt:          time.Now(),
	}
}

// copyParams snapshots action parameters so the plan owns its data. Nested
// objects and arrays from json decoding are copied recursively.
func copyParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyParams(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}
