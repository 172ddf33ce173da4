package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"basegraph.app/helixask/internal/gates"
)

// SaveGateReport persists one question's full gate verdict trail, keyed by
// the trace id the question was answered under.
func (s *Store) SaveGateReport(ctx context.Context, traceID string, report gates.Report) error {
	verdicts, err := json.Marshal(report.Verdicts)
	if err != nil {
		return fmt.Errorf("store: marshal gate verdicts: %w", err)
	}

	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			insert into gate_reports (trace_id, verdicts, clarify, clarify_reason, created_at)
			values ($1, $2, $3, $4, $5)
			on conflict (trace_id) do update set
				verdicts = excluded.verdicts,
				clarify = excluded.clarify,
				clarify_reason = excluded.clarify_reason
		`, traceID, verdicts, report.Clarify, report.ClarifyReason, time.Now())
		if err != nil {
			return fmt.Errorf("store: insert gate report: %w", err)
		}
		return nil
	})
}
