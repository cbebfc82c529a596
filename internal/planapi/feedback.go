package planapi

import (
	"encoding/json"
	"net/http"
)

type feedbackRequest struct {
	PlanID         string  `json:"plan_id"`
	Label          string  `json:"label"`
	ActionFit      float64 `json:"action_fit"`
	ReviewerIDHash string  `json:"reviewer_id_hash"`
}

func (a *API) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	receipt, err := a.intake.Accept(r.Context(), req.PlanID, req.Label, req.ActionFit, req.ReviewerIDHash)
	if err != nil {
		a.writeValidationError(w, r, err)
		return
	}

	if a.metrics != nil {
		a.metrics.FeedbackTotal.WithLabelValues(req.Label).Inc()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "accepted",
		"feedback_id": receipt.FeedbackID,
	})
}
