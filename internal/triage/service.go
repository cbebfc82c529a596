package triage

import (
	"context"
	"errors"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/corridor/internal/contract"
	"github.com/linnemanlabs/corridor/internal/dispatch"
	"github.com/linnemanlabs/corridor/internal/plan"
)

// Service is the business boundary for triage operations.
type Service struct {
	validator  *contract.Validator
	dispatcher *dispatch.Dispatcher
	store      Store
	logger     log.Logger
	metrics    *Metrics
}

// NewService creates a new triage service. metrics may be nil.
func NewService(validator *contract.Validator, dispatcher *dispatch.Dispatcher, store Store, logger log.Logger, metrics *Metrics) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		validator:  validator,
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
		metrics:    metrics,
	}
}

// Triage runs the full pipeline for one request: dedup, validate, build,
// dispatch, persist. A retried request (same fingerprint) returns the
// previously issued plan without dispatching again.
func (s *Service) Triage(ctx context.Context, req *Request) (*SubmitResult, error) {
	fp := req.Fingerprint()

	if existing, ok, err := s.store.GetByFingerprint(ctx, fp); err != nil {
		return nil, err
	} else if ok {
		s.countSubmit("duplicate")
		s.logger.Info(ctx, "duplicate triage request", "fingerprint", fp, "plan_id", existing.ID)
		return &SubmitResult{Plan: existing, Deduplicated: true}, nil
	}

	screening, applied, err := s.validator.Validate(req.Screening)
	if err != nil {
		s.countSubmit("invalid")
		if s.metrics != nil {
			s.metrics.ValidationFailures.WithLabelValues(versionLabel(err)).Inc()
		}
		return nil, err
	}

	p := plan.Build(screening, req.Actions)
	p.Fingerprint = fp

	// persist before dispatch so a crash mid-dispatch leaves a retrievable
	// plan with stable idempotency keys
	if err := s.store.Put(ctx, p); err != nil {
		return nil, err
	}

	p.Execution = s.dispatcher.Dispatch(ctx, p)
	if err := s.store.Put(ctx, p); err != nil {
		return nil, err
	}

	s.countSubmit("created")
	if s.metrics != nil {
		s.metrics.PlansTotal.WithLabelValues(string(p.Summary.CorridorRisk), string(p.ActionSource)).Inc()
		s.metrics.PlanActions.Observe(float64(len(p.RecommendedActions)))
	}

	s.logger.Info(ctx, "plan issued",
		"plan_id", p.ID,
		"schema_version", p.SchemaVersion,
		"aliases_applied", len(applied),
		"corridor_risk", p.Summary.CorridorRisk,
		"actions", len(p.RecommendedActions),
		"approvals_required", p.ApprovalsRequired,
		"needs_human_review", p.NeedsHumanReview,
	)

	return &SubmitResult{Plan: p}, nil
}

// Redispatch retries a stored plan's failed and skipped actions. Actions
// already queued downstream are not re-sent; Merge carries their results
// forward. Idempotency keys are unchanged, so downstream systems see
// retries, not new work.
func (s *Service) Redispatch(ctx context.Context, id string) (*plan.Plan, bool, error) {
	p, ok, err := s.store.Get(ctx, id)
	if err != nil || !ok {
		return nil, false, err
	}

	pending := *p
	if p.Execution != nil {
		queued := make(map[string]bool, len(p.Execution.Results))
		for _, r := range p.Execution.Results {
			if r.Status == plan.StatusQueued {
				queued[r.ActionID] = true
			}
		}
		actions := make([]plan.RecommendedAction, 0, len(p.RecommendedActions))
		for _, a := range p.RecommendedActions {
			if !queued[a.ID] {
				actions = append(actions, a)
			}
		}
		pending.RecommendedActions = actions
	}

	delta := s.dispatcher.Dispatch(ctx, &pending)
	p.Execution = dispatch.Merge(p.Execution, delta)

	if err := s.store.Put(ctx, p); err != nil {
		return nil, false, err
	}

	s.logger.Info(ctx, "plan re-dispatched", "plan_id", p.ID, "attempts", p.Execution.Attempts)
	return p, true, nil
}

// Get retrieves a plan by ID.
func (s *Service) Get(ctx context.Context, id string) (*plan.Plan, bool, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) countSubmit(result string) {
	if s.metrics != nil {
		s.metrics.SubmitsTotal.WithLabelValues(result).Inc()
	}
}

// versionLabel extracts a schema version label from a validation error for
// metrics, falling back to "unknown".
func versionLabel(err error) string {
	var (
		validation *contract.ValidationError
		unknownVer *contract.UnknownSchemaVersionError
		unknownFld *contract.UnknownFieldError
	)
	switch {
	case errors.As(err, &validation):
		return validation.Version
	case errors.As(err, &unknownVer):
		return unknownVer.Version
	case errors.As(err, &unknownFld):
		return unknownFld.Version
	}
	return "unknown"
}
