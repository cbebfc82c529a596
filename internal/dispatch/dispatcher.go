package dispatch

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/corridor/internal/plan"
)

var tracer = otel.Tracer("github.com/linnemanlabs/corridor/internal/dispatch")

// Hooks lets the caller observe adapter calls without coupling the
// dispatcher to a metrics backend.
type Hooks struct {
	OnAdapterCall func(capability string, status plan.ActionStatus, duration float64)
}

// Dispatcher executes a plan's recommended actions against the adapter
// registry. Actions run sequentially in canonical plan order (a hold is
// issued before the case that references it) with a bounded timeout per
// adapter call. Adapter failures are recorded per action and never abort the
// rest of the plan.
type Dispatcher struct {
	registry *Registry
	timeout  time.Duration
	logger   log.Logger
	hooks    Hooks
}

// NewDispatcher creates a dispatcher with the given per-action timeout.
func NewDispatcher(registry *Registry, timeout time.Duration, logger log.Logger, hooks Hooks) *Dispatcher {
	if logger == nil {
		logger = log.Nop()
	}
	return &Dispatcher{
		registry: registry,
		timeout:  timeout,
		logger:   logger,
		hooks:    hooks,
	}
}

// Dispatch executes every recommended action of a plan once and returns the
// execution record. Idempotency keys derived from (plan id, action id) make
// repeated dispatch of the same plan safe.
func (d *Dispatcher) Dispatch(ctx context.Context, p *plan.Plan) *plan.ExecutionRecord {
	record := &plan.ExecutionRecord{
		Attempts:  1,
		StartedAt: time.Now(),
		Results:   make([]plan.ActionResult, 0, len(p.RecommendedActions)),
	}

	L := d.logger.With("plan_id", p.ID)

	for _, action := range p.RecommendedActions {
		record.Results = append(record.Results, d.execute(ctx, L, p.ID, action))
	}

	record.CompletedAt = time.Now()
	return record
}

func (d *Dispatcher) execute(ctx context.Context, L log.Logger, planID string, action plan.RecommendedAction) (result plan.ActionResult) {
	key := Key(planID, action.ID)
	result = plan.ActionResult{
		ActionID:       action.ID,
		Category:       action.Category,
		IdempotencyKey: key,
	}

	capability, resolved := CapabilityFor(action.Category)

	ctx, span := tracer.Start(ctx, "adapter.execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("corridor.plan.id", planID),
		attribute.String("corridor.action.id", action.ID),
		attribute.String("corridor.action.category", action.Category),
		attribute.String("corridor.idempotency_key", key),
	)

	start := time.Now()
	defer func() {
		result.Duration = time.Since(start).Seconds()
		span.SetAttributes(attribute.String("corridor.action.status", string(result.Status)))
		if d.hooks.OnAdapterCall != nil {
			label := capability
			if !resolved {
				label = "unknown"
			}
			d.hooks.OnAdapterCall(label, result.Status, result.Duration)
		}
	}()

	if !resolved {
		L.Warn(ctx, "no capability serves action category", "action", action.ID, "category", action.Category)
		result.Status = plan.StatusSkipped
		result.Error = "no capability serves category " + action.Category
		return result
	}

	adapter, ok := d.registry.Get(capability)
	if !ok {
		L.Warn(ctx, "no adapter for capability", "action", action.ID, "category", action.Category, "capability", capability)
		result.Status = plan.StatusSkipped
		result.Error = "no adapter registered for capability " + capability
		return result
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	res, err := adapter.Execute(callCtx, key, action.Parameters)
	if err != nil {
		L.Error(ctx, err, "adapter call failed", "action", action.ID, "category", action.Category)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		result.Status = plan.StatusFailed
		result.Error = err.Error()
		return result
	}

	result.Status = plan.StatusQueued
	result.ReferenceID = res.ReferenceID

	L.Info(ctx, "action dispatched",
		"action", action.ID,
		"category", action.Category,
		"adapter_status", res.Status,
		"reference_id", res.ReferenceID,
	)
	return result
}
