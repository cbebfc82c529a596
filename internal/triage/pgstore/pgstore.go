// Package pgstore provides a PostgreSQL implementation of triage.Store and
// feedback.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/corridor/internal/feedback"
	"github.com/linnemanlabs/corridor/internal/plan"
)

var tracer = otel.Tracer("github.com/linnemanlabs/corridor/internal/triage/pgstore")

//go:embed schema.sql
var schema string

// Store persists plans and feedback in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

const planColumns = `id, fingerprint, schema_version, summary, recommended_actions,
	approvals_required, needs_human_review, action_source, created_at, execution`

// Get retrieves a plan by ID.
func (s *Store) Get(ctx context.Context, id string) (*plan.Plan, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	p, err := s.scanPlanRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if p == nil {
		return nil, false, nil
	}
	return p, true, nil
}

// GetByFingerprint retrieves the most recent plan for a request fingerprint.
func (s *Store) GetByFingerprint(ctx context.Context, fingerprint string) (*plan.Plan, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetByFingerprint", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + planColumns + ` FROM plans WHERE fingerprint = $1 ORDER BY created_at DESC LIMIT 1`
	p, err := s.scanPlanRow(s.pool.QueryRow(ctx, query, fingerprint))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if p == nil {
		return nil, false, nil
	}
	return p, true, nil
}

// Put inserts or updates a plan (upsert on id).
func (s *Store) Put(ctx context.Context, p *plan.Plan) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	summaryJSON, err := json.Marshal(p.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	actionsJSON, err := json.Marshal(p.RecommendedActions)
	if err != nil {
		return fmt.Errorf("marshal recommended actions: %w", err)
	}
	var executionJSON []byte
	if p.Execution != nil {
		executionJSON, err = json.Marshal(p.Execution)
		if err != nil {
			return fmt.Errorf("marshal execution: %w", err)
		}
	}

	query := `INSERT INTO plans (
		id, fingerprint, schema_version, summary, recommended_actions,
		approvals_required, needs_human_review, action_source, created_at, execution
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	ON CONFLICT (id) DO UPDATE SET
		fingerprint         = EXCLUDED.fingerprint,
		schema_version      = EXCLUDED.schema_version,
		summary             = EXCLUDED.summary,
		recommended_actions = EXCLUDED.recommended_actions,
		approvals_required  = EXCLUDED.approvals_required,
		needs_human_review  = EXCLUDED.needs_human_review,
		action_source       = EXCLUDED.action_source,
		execution           = EXCLUDED.execution`

	_, err = s.pool.Exec(ctx, query,
		p.ID, p.Fingerprint, p.SchemaVersion, summaryJSON, actionsJSON,
		p.ApprovalsRequired, p.NeedsHumanReview, string(p.ActionSource), p.CreatedAt, executionJSON,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert plan: %w", err)
	}
	return nil
}

// PutFeedback implements feedback.Store.
func (s *Store) PutFeedback(ctx context.Context, fb *feedback.Feedback) error {
	ctx, span := tracer.Start(ctx, "pgstore.PutFeedback", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO feedback (id, plan_id, label, action_fit, reviewer_id_hash, received_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		fb.ID, fb.PlanID, fb.Label, fb.ActionFit, fb.ReviewerIDHash, fb.ReceivedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// scanPlanRow scans a single row into a plan.Plan. Returns (nil, nil) when no
// row is found.
func (s *Store) scanPlanRow(row pgx.Row) (*plan.Plan, error) {
	var (
		p             plan.Plan
		source        string
		summaryJSON   []byte
		actionsJSON   []byte
		executionJSON []byte
	)

	err := row.Scan(
		&p.ID, &p.Fingerprint, &p.SchemaVersion, &summaryJSON, &actionsJSON,
		&p.ApprovalsRequired, &p.NeedsHumanReview, &source, &p.CreatedAt, &executionJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	p.ActionSource = plan.ActionSource(source)

	if err := json.Unmarshal(summaryJSON, &p.Summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	if err := json.Unmarshal(actionsJSON, &p.RecommendedActions); err != nil {
		return nil, fmt.Errorf("unmarshal recommended actions: %w", err)
	}
	if len(executionJSON) > 0 {
		p.Execution = &plan.ExecutionRecord{}
		if err := json.Unmarshal(executionJSON, p.Execution); err != nil {
			return nil, fmt.Errorf("unmarshal execution: %w", err)
		}
	}

	return &p, nil
}
