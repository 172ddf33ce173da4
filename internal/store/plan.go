package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"basegraph.app/helixask/internal/orchestrator"
)

// SavePlan persists a compiled plan under its trace id, so a PlanCache miss
// can fall through to Postgres instead of forcing a re-plan.
func (s *Store) SavePlan(ctx context.Context, id string, plan orchestrator.Plan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("store: marshal plan: %w", err)
	}

	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			insert into plan_records (id, goal, payload, created_at)
			values ($1, $2, $3, $4)
			on conflict (id) do update set payload = excluded.payload
		`, id, plan.Goal, payload, time.Now())
		if err != nil {
			return fmt.Errorf("store: insert plan record: %w", err)
		}
		return nil
	})
}

// LoadPlan implements orchestrator.TraceStore, the fallback a PlanCache
// consults on a cache miss.
func (s *Store) LoadPlan(ctx context.Context, id string) (orchestrator.Plan, bool, error) {
	var payload []byte
	err := s.db.Pool().QueryRow(ctx, `select payload from plan_records where id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return orchestrator.Plan{}, false, nil
		}
		return orchestrator.Plan{}, false, fmt.Errorf("store: load plan: %w", err)
	}

	var plan orchestrator.Plan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return orchestrator.Plan{}, false, fmt.Errorf("store: unmarshal plan: %w", err)
	}
	return plan, true, nil
}

var _ orchestrator.TraceStore = (*Store)(nil)
