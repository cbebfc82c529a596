// Package feedback accepts reviewer judgments on issued plans. Feedback
// references a plan by id only; it is accepted even after the plan itself has
// been evicted, since calibration consumes it asynchronously.
package feedback

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Outcome labels a reviewer may attach to a plan.
const (
	LabelConfirmedRisk = "confirmed_risk"
	LabelFalsePositive = "false_positive"
	LabelInconclusive  = "inconclusive"
	LabelEscalated     = "escalated"
)

var validLabels = map[string]bool{
	LabelConfirmedRisk: true,
	LabelFalsePositive: true,
	LabelInconclusive:  true,
	LabelEscalated:     true,
}

// Labels returns the accepted outcome vocabulary, sorted.
func Labels() []string {
	out := make([]string, 0, len(validLabels))
	for l := range validLabels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Feedback is one reviewer judgment on a plan. It never mutates the plan.
type Feedback struct {
	ID             string    `json:"id"`
	PlanID         string    `json:"plan_id"`
	Label          string    `json:"label"`
	ActionFit      float64   `json:"action_fit"`
	ReviewerIDHash string    `json:"reviewer_id_hash"`
	ReceivedAt     time.Time `json:"received_at"`
}

// Receipt acknowledges accepted feedback.
type Receipt struct {
	FeedbackID string    `json:"feedback_id"`
	PlanID     string    `json:"plan_id"`
	ReceivedAt time.Time `json:"received_at"`
}

// FieldViolation describes one invalid feedback field.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// InvalidFeedbackError reports every invalid field of a feedback submission.
type InvalidFeedbackError struct {
	Violations []FieldViolation
}

func (e *InvalidFeedbackError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Reason)
	}
	return fmt.Sprintf("invalid feedback (%d violations): %s", len(e.Violations), strings.Join(parts, "; "))
}

// Store persists accepted feedback.
type Store interface {
	PutFeedback(ctx context.Context, fb *Feedback) error
}

// Intake validates and stores reviewer feedback.
type Intake struct {
	store Store
}

// NewIntake creates a feedback intake backed by the given store.
func NewIntake(store Store) *Intake {
	return &Intake{store: store}
}

// Accept validates a submission and persists it. Validation collects all
// field violations before failing. The referenced plan is not looked up.
func (in *Intake) Accept(ctx context.Context, planID, label string, actionFit float64, reviewerIDHash string) (*Receipt, error) {
	var violations []FieldViolation
	if planID == "" {
		violations = append(violations, FieldViolation{Field: "plan_id", Reason: "must not be empty"})
	}
	if !validLabels[label] {
		violations = append(violations, FieldViolation{
			Field:  "label",
			Reason: fmt.Sprintf("%q is not one of %s", label, strings.Join(Labels(), ", ")),
		})
	}
	if actionFit < 0 || actionFit > 1 {
		violations = append(violations, FieldViolation{
			Field:  "action_fit",
			Reason: fmt.Sprintf("%g is outside [0, 1]", actionFit),
		})
	}
	if reviewerIDHash == "" {
		violations = append(violations, FieldViolation{Field: "reviewer_id_hash", Reason: "must not be empty"})
	}
	if len(violations) > 0 {
		return nil, &InvalidFeedbackError{Violations: violations}
	}

	fb := &Feedback{
		ID:             ulid.Make().String(),
		PlanID:         planID,
		Label:          label,
		ActionFit:      actionFit,
		ReviewerIDHash: reviewerIDHash,
		ReceivedAt:     time.Now().UTC(),
	}
	if err := in.store.PutFeedback(ctx, fb); err != nil {
		return nil, fmt.Errorf("store feedback: %w", err)
	}
	return &Receipt{FeedbackID: fb.ID, PlanID: fb.PlanID, ReceivedAt: fb.ReceivedAt}, nil
}
