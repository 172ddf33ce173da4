package ask

import (
	"context"
	"time"

	"basegraph.app/helixask/internal/domain"
)

// Ask implements orchestrator.AskRunner so the warp-ask plan step can
// re-enter this same pipeline as a sub-call. Sub-calls are variant
// traffic for the alpha governor: they're triggered by a plan, not a
// direct user question.
func (p *Pipeline) Ask(ctx context.Context, question string) (domain.AnswerEnvelope, error) {
	q := domain.Question{
		Prompt:     question,
		ReceivedAt: time.Now(),
	}

	result, err := p.Answer(ctx, q)
	if err != nil {
		return domain.AnswerEnvelope{}, err
	}

	go p.EmitTrajectory(context.WithoutCancel(ctx), q, result, domain.OriginVariant)

	return result.Envelope, nil
}
