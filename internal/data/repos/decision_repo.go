package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quantora/compass/internal/contracts"
)

// DecisionRepository implements contracts.DecisionRepository by appending
// each decision query and its outcome to an audit log.
type DecisionRepository struct {
	pool *pgxpool.Pool
}

// NewDecisionRepository creates a new decision repository
func NewDecisionRepository(pool *pgxpool.Pool) *DecisionRepository {
	return &DecisionRepository{pool: pool}
}

// Save records one decision query and its result. Append-only.
func (r *DecisionRepository) Save(ctx context.Context, query contracts.DecisionQuery, decision contracts.Decision) error {
	insert := `
		INSERT INTO analytics.decision_log (
			level, name, tickers, from_date, to_date, as_of,
			label, weighted_mean, consensus, confidence, rationale, top_signals
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, insert,
		string(query.Level), query.Name, query.Tickers,
		query.FromDate, query.ToDate, query.AsOf,
		string(decision.Label), decision.WeightedMean, decision.Consensus,
		decision.Confidence, decision.Rationale, decision.TopSignals,
	)
	if err != nil {
		return fmt.Errorf("failed to record decision for %s %q: %w", query.Level, query.Name, err)
	}

	return nil
}
