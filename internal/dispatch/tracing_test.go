package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/corridor/internal/plan"
)

func TestDispatch_CreatesSpans(t *testing.T) {
	// Not parallel: swaps the global OTel tracer provider.

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	registry := NewRegistry()
	registry.Register(&mockAdapter{capability: CapCreateCase})
	registry.Register(&mockAdapter{capability: CapPlaceHold, err: errors.New("hold system unavailable")})

	p := &plan.Plan{
		ID: "01SPANPLAN",
		RecommendedActions: []plan.RecommendedAction{
			{ID: "hold-1", Category: CapPlaceHold},
			{ID: "case-1", Category: CapCreateCase},
		},
	}

	d := NewDispatcher(registry, time.Second, log.Nop(), Hooks{})
	record := d.Dispatch(context.Background(), p)
	if len(record.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(record.Results))
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(spans))
	}

	byAction := make(map[string]tracetest.SpanStub)
	for _, s := range spans {
		if s.Name != "adapter.execute" {
			t.Errorf("span name = %q, want adapter.execute", s.Name)
		}
		attrs := make(map[string]any)
		for _, a := range s.Attributes {
			attrs[string(a.Key)] = a.Value.AsInterface()
		}
		id, _ := attrs["corridor.action.id"].(string)
		byAction[id] = s

		if v := attrs["corridor.plan.id"]; v != "01SPANPLAN" {
			t.Errorf("corridor.plan.id = %v, want 01SPANPLAN", v)
		}
		key, _ := attrs["corridor.idempotency_key"].(string)
		if want := Key("01SPANPLAN", id); key != want {
			t.Errorf("corridor.idempotency_key = %q, want %q", key, want)
		}
	}

	holdAttrs := make(map[string]any)
	for _, a := range byAction["hold-1"].Attributes {
		holdAttrs[string(a.Key)] = a.Value.AsInterface()
	}
	if v := holdAttrs["corridor.action.status"]; v != string(plan.StatusFailed) {
		t.Errorf("hold-1 corridor.action.status = %v, want failed", v)
	}
	if got := byAction["hold-1"].Status.Description; got != "hold system unavailable" {
		t.Errorf("hold-1 span status description = %q, want adapter error", got)
	}

	caseAttrs := make(map[string]any)
	for _, a := range byAction["case-1"].Attributes {
		caseAttrs[string(a.Key)] = a.Value.AsInterface()
	}
	if v := caseAttrs["corridor.action.status"]; v != string(plan.StatusQueued) {
		t.Errorf("case-1 corridor.action.status = %v, want queued", v)
	}
}
