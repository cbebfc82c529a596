// Package planapi exposes the triage pipeline over HTTP: plan creation,
// re-dispatch, plan lookup, and feedback intake.
package planapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/corridor/internal/contract"
	"github.com/linnemanlabs/corridor/internal/feedback"
	"github.com/linnemanlabs/corridor/internal/plan"
	"github.com/linnemanlabs/corridor/internal/triage"
)

// TriageService defines the business operations planapi needs.
type TriageService interface {
	Triage(ctx context.Context, req *triage.Request) (*triage.SubmitResult, error)
	Redispatch(ctx context.Context, id string) (*plan.Plan, bool, error)
	Get(ctx context.Context, id string) (*plan.Plan, bool, error)
}

// FeedbackIntake defines the feedback operation planapi needs.
type FeedbackIntake interface {
	Accept(ctx context.Context, planID, label string, actionFit float64, reviewerIDHash string) (*feedback.Receipt, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger         log.Logger
	svc            TriageService
	intake         FeedbackIntake
	defaultVersion string
	metrics        *triage.Metrics
}

// New creates a new API handler. metrics may be nil.
func New(logger log.Logger, svc TriageService, intake FeedbackIntake, defaultVersion string, metrics *triage.Metrics) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("triage service is required"))
	}
	if intake == nil {
		panic(xerrors.New("feedback intake is required"))
	}
	return &API{
		logger:         logger,
		svc:            svc,
		intake:         intake,
		defaultVersion: defaultVersion,
		metrics:        metrics,
	}
}

// RegisterRoutes attaches API endpoints to the router. Middleware applies to
// the /api/v1 group only; /healthz stays open for probes.
func (a *API) RegisterRoutes(r chi.Router, mw ...func(http.Handler) http.Handler) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw...)
		r.Post("/triage/plan", a.handleCreatePlan)
		r.Post("/triage/plan/{id}/dispatch", a.handleRedispatch)
		r.Get("/triage/plan/{id}", a.handleGetPlan)
		r.Post("/feedback", a.handleFeedback)
	})
	r.Get("/healthz", a.handleHealthz)
}

func (a *API) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"schema_version": a.defaultVersion})
}

func (a *API) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("corridor.plan.id", id))

	p, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get plan", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleRedispatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("corridor.plan.id", id))

	p, ok, err := a.svc.Redispatch(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to re-dispatch plan", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing to do with errors here
	_ = json.NewEncoder(w).Encode(v)
}

// fieldError is the wire shape of one field-level violation.
type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// writeValidationError maps the pipeline's typed errors onto a field-level
// 4xx response; anything unrecognised becomes a 500.
func (a *API) writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *contract.ValidationError
		unknownVer *contract.UnknownSchemaVersionError
		unknownFld *contract.UnknownFieldError
		invalidFb  *feedback.InvalidFeedbackError
	)

	switch {
	case errors.As(err, &validation):
		fields := make([]fieldError, 0, len(validation.Violations))
		for _, v := range validation.Violations {
			fields = append(fields, fieldError{Field: v.Field, Reason: v.Reason})
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":          "schema validation failed",
			"schema_version": validation.Version,
			"fields":         fields,
		})

	case errors.As(err, &unknownVer):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":          "unknown schema version",
			"schema_version": unknownVer.Version,
		})

	case errors.As(err, &unknownFld):
		fields := make([]fieldError, 0, len(unknownFld.Fields))
		for _, f := range unknownFld.Fields {
			fields = append(fields, fieldError{Field: f, Reason: "unknown field"})
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":          "unknown fields",
			"schema_version": unknownFld.Version,
			"fields":         fields,
		})

	case errors.As(err, &invalidFb):
		fields := make([]fieldError, 0, len(invalidFb.Violations))
		for _, v := range invalidFb.Violations {
			fields = append(fields, fieldError{Field: v.Field, Reason: v.Reason})
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "invalid feedback",
			"fields": fields,
		})

	default:
		a.logger.Error(r.Context(), err, "request failed")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}
