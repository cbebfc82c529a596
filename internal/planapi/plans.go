package planapi

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/corridor/internal/plan"
	"github.com/linnemanlabs/corridor/internal/triage"
)

// createPlanRequest is the triage submission envelope.
type createPlanRequest struct {
	RequestID string                      `json:"request_id,omitempty"`
	Screening map[string]any              `json:"screening"`
	Actions   *plan.UpstreamActionPayload `json:"actions,omitempty"`
}

func (a *API) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if req.Screening == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "invalid payload",
			"fields": []fieldError{{Field: "screening", Reason: "must be present"}},
		})
		return
	}

	res, err := a.svc.Triage(r.Context(), &triage.Request{
		RequestID: req.RequestID,
		Screening: req.Screening,
		Actions:   req.Actions,
	})
	if err != nil {
		a.writeValidationError(w, r, err)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("corridor.plan.id", res.Plan.ID),
		attribute.String("corridor.plan.risk", string(res.Plan.Summary.CorridorRisk)),
		attribute.Bool("corridor.plan.deduplicated", res.Deduplicated),
	)

	writeJSON(w, http.StatusOK, res.Plan)
}
