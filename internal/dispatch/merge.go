package dispatch

import "github.com/linnemanlabs/corridor/internal/plan"

// Merge combines the execution record from a re-dispatch with the previously
// stored one. Per action: a previously queued result is kept (the side effect
// was already issued downstream), otherwise the delta wins. Actions only
// present in one record are carried over, with the previous record's ordering
// preserved. Neither input is mutated.
func Merge(prev, delta *plan.ExecutionRecord) *plan.ExecutionRecord {
	if prev == nil {
		return delta
	}
	if delta == nil {
		return prev
	}

	out := &plan.ExecutionRecord{
		Attempts:    prev.Attempts + delta.Attempts,
		StartedAt:   prev.StartedAt,
		CompletedAt: delta.CompletedAt,
	}

	deltaByID := make(map[string]plan.ActionResult, len(delta.Results))
	for _, r := range delta.Results {
		deltaByID[r.ActionID] = r
	}

	for _, r := range prev.Results {
		d, ok := deltaByID[r.ActionID]
		if !ok || r.Status == plan.StatusQueued {
			out.Results = append(out.Results, r)
		} else {
			out.Results = append(out.Results, d)
		}
		delete(deltaByID, r.ActionID)
	}

	// delta-only actions, in delta order
	for _, r := range delta.Results {
		if _, pending := deltaByID[r.ActionID]; pending {
			out.Results = append(out.Results, r)
		}
	}
	return out
}
