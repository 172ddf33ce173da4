package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"basegraph.app/helixask/internal/domain"
)

// SaveTrajectory persists one executed-answer trajectory, the record the
// alpha governor admitted into the training store.
func (s *Store) SaveTrajectory(ctx context.Context, t domain.Trajectory) error {
	intentTags, err := json.Marshal(t.IntentTags)
	if err != nil {
		return fmt.Errorf("store: marshal intent tags: %w", err)
	}
	evidence, err := json.Marshal(t.Evidence)
	if err != nil {
		return fmt.Errorf("store: marshal evidence: %w", err)
	}
	citations, err := json.Marshal(t.Citations)
	if err != nil {
		return fmt.Errorf("store: marshal citations: %w", err)
	}
	retrievalMetrics, err := json.Marshal(t.RetrievalMetrics)
	if err != nil {
		return fmt.Errorf("store: marshal retrieval metrics: %w", err)
	}
	envelopes, err := json.Marshal(t.ExecutionEnvelopes)
	if err != nil {
		return fmt.Errorf("store: marshal execution envelopes: %w", err)
	}
	gateFlags, err := json.Marshal(t.GateFlags)
	if err != nil {
		return fmt.Errorf("store: marshal gate flags: %w", err)
	}

	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			insert into trajectories (
				id, goal, intent_tags, evidence, citations,
				retrieval_metrics, execution_envelopes, gate_flags,
				origin, created_at
			) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			on conflict (id) do nothing
		`, t.ID, t.Goal, intentTags, evidence, citations,
			retrievalMetrics, envelopes, gateFlags, string(t.Origin), t.CreatedAt)
		if err != nil {
			return fmt.Errorf("store: insert trajectory: %w", err)
		}
		return nil
	})
}

// GetTrajectory loads one trajectory by id.
func (s *Store) GetTrajectory(ctx context.Context, id string) (domain.Trajectory, error) {
	row := s.db.Pool().QueryRow(ctx, `
		select id, goal, intent_tags, evidence, citations,
		       retrieval_metrics, execution_envelopes, gate_flags,
		       origin, created_at
		from trajectories where id = $1
	`, id)

	var t domain.Trajectory
	var origin string
	var intentTags, evidence, citations, retrievalMetrics, envelopes, gateFlags []byte

	err := row.Scan(&t.ID, &t.Goal, &intentTags, &evidence, &citations,
		&retrievalMetrics, &envelopes, &gateFlags, &origin, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trajectory{}, ErrNotFound
		}
		return domain.Trajectory{}, fmt.Errorf("store: get trajectory: %w", err)
	}
	t.Origin = domain.TrajectoryOrigin(origin)

	if err := unmarshalAll(
		field{&t.IntentTags, intentTags},
		field{&t.Evidence, evidence},
		field{&t.Citations, citations},
		field{&t.RetrievalMetrics, retrievalMetrics},
		field{&t.ExecutionEnvelopes, envelopes},
		field{&t.GateFlags, gateFlags},
	); err != nil {
		return domain.Trajectory{}, err
	}

	return t, nil
}

type field struct {
	target any
	raw    []byte
}

func unmarshalAll(fields ...field) error {
	for _, f := range fields {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.target); err != nil {
			return fmt.Errorf("store: unmarshal trajectory field: %w", err)
		}
	}
	return nil
}
