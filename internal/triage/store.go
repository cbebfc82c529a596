package triage

import (
	"context"

	"github.com/linnemanlabs/corridor/internal/plan"
)

// Store is the persistence interface for issued plans.
type Store interface {
	Get(ctx context.Context, id string) (*plan.Plan, bool, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*plan.Plan, bool, error)
	Put(ctx context.Context, p *plan.Plan) error
}
