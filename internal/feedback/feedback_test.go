package feedback

import (
	"context"
	"errors"
	"testing"
)

func TestAccept_ValidFeedback(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	in := NewIntake(store)

	receipt, err := in.Accept(context.Background(), "01PLAN", LabelFalsePositive, 0.8, "sha256:abcd")
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if receipt.FeedbackID == "" {
		t.Error("receipt has empty feedback id")
	}
	if receipt.PlanID != "01PLAN" {
		t.Errorf("receipt plan id = %q, want 01PLAN", receipt.PlanID)
	}

	stored := store.ForPlan("01PLAN")
	if len(stored) != 1 {
		t.Fatalf("stored feedback = %d, want 1", len(stored))
	}
	if stored[0].Label != LabelFalsePositive || stored[0].ActionFit != 0.8 {
		t.Errorf("stored = %+v, want submitted values", stored[0])
	}
}

func TestAccept_PlanNeedNotExist(t *testing.T) {
	t.Parallel()

	in := NewIntake(NewMemStore())
	if _, err := in.Accept(context.Background(), "never-issued", LabelInconclusive, 0.5, "sha256:x"); err != nil {
		t.Fatalf("Accept() error = %v, want feedback accepted without plan lookup", err)
	}
}

func TestAccept_CollectsAllViolations(t *testing.T) {
	t.Parallel()

	in := NewIntake(NewMemStore())
	_, err := in.Accept(context.Background(), "", "great_job", 1.5, "")

	var invalid *InvalidFeedbackError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidFeedbackError", err)
	}

	fields := make(map[string]bool)
	for _, v := range invalid.Violations {
		fields[v.Field] = true
	}
	for _, want := range []string{"plan_id", "label", "action_fit", "reviewer_id_hash"} {
		if !fields[want] {
			t.Errorf("violations %v missing field %q", invalid.Violations, want)
		}
	}
}

func TestAccept_ActionFitBounds(t *testing.T) {
	t.Parallel()

	in := NewIntake(NewMemStore())

	tests := []struct {
		name    string
		fit     float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"one", 1, false},
		{"mid", 0.42, false},
		{"negative", -0.01, true},
		{"above one", 1.01, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := in.Accept(context.Background(), "01PLAN", LabelConfirmedRisk, tt.fit, "sha256:x")
			if gotErr := err != nil; gotErr != tt.wantErr {
				t.Errorf("Accept(fit=%g) error = %v, wantErr %v", tt.fit, err, tt.wantErr)
			}
		})
	}
}

func TestAccept_LabelVocabulary(t *testing.T) {
	t.Parallel()

	in := NewIntake(NewMemStore())

	for _, label := range Labels() {
		if _, err := in.Accept(context.Background(), "01PLAN", label, 0.5, "sha256:x"); err != nil {
			t.Errorf("Accept(label=%q) error = %v, want accepted", label, err)
		}
	}
	if _, err := in.Accept(context.Background(), "01PLAN", "CONFIRMED_RISK", 0.5, "sha256:x"); err == nil {
		t.Error("labels are case sensitive, uppercase variant should be rejected")
	}
}

func TestAccept_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	in := NewIntake(failStore{})
	if _, err := in.Accept(context.Background(), "01PLAN", LabelEscalated, 0.5, "sha256:x"); err == nil {
		t.Fatal("expected store error to propagate")
	}
}

type failStore struct{}

func (failStore) PutFeedback(context.Context, *Feedback) error {
	return errors.New("disk full")
}
