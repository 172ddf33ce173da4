package ask

import (
	"context"
	"time"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/gates"
	"basegraph.app/helixask/internal/trajectory"
)

// TrajectoryStore is the narrow persistence capability EmitTrajectory
// needs; satisfied by *store.Store.
type TrajectoryStore interface {
	SaveTrajectory(ctx context.Context, t domain.Trajectory) error
}

// EmitTrajectory folds one executed Answer call into a Trajectory and, if
// the alpha governor admits it, persists it to Trajectories. A nil
// Governor or Trajectories on the Pipeline disables this entirely — both
// are optional so tests and single-shot callers can skip training-data
// capture altogether. Runs synchronously but is meant to be called from a
// goroutine by callers on the request's hot path.
func (p *Pipeline) EmitTrajectory(ctx context.Context, q domain.Question, result Result, origin domain.TrajectoryOrigin) {
	if p.Governor == nil || p.Trajectories == nil {
		return
	}

	admitted, stats, err := p.Governor.Admit(ctx, origin)
	if err != nil {
		p.logger().WarnContext(ctx, "alpha governor admit failed", "error", err, "origin", origin)
		return
	}
	if !admitted {
		p.logger().DebugContext(ctx, "trajectory denied by alpha governor", "origin", origin, "run_ratio", stats.Run)
		return
	}

	t := trajectory.Build(trajectory.BuildInput{
		Goal:       q.Prompt,
		Evidence:   result.Evidence,
		Envelopes:  []domain.AnswerEnvelope{result.Envelope},
		Gates:      toDomainGateReport(result.Gates),
		Origin:     origin,
		IntentTags: result.Tags,
	}, time.Now())

	if err := p.Trajectories.SaveTrajectory(ctx, t); err != nil {
		p.logger().ErrorContext(ctx, "save trajectory failed", "error", err, "trajectory_id", t.ID)
	}
}

// toDomainGateReport adapts the gate stack's own Verdict/Report shape to
// the domain.GateReport shape the trajectory emitter and the job record's
// debug payload both serialize.
func toDomainGateReport(r gates.Report) domain.GateReport {
	out := domain.GateReport{Gates: make([]domain.GateResult, 0, len(r.Verdicts))}
	for _, v := range r.Verdicts {
		out.Gates = append(out.Gates, domain.GateResult{Name: v.Gate, Pass: v.Passed, Notes: v.Reason})
	}
	out.Accept()
	return out
}
