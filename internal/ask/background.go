package ask

import (
	"context"
	"fmt"
	"time"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/jobstore"
	"basegraph.app/helixask/internal/stream"
)

// RunJob starts one question as an async job. The job record moves
// queued -> running -> {completed, failed} in store; the stream emitter
// marks the Searching -> InAnswer -> Done phase transitions, and each of
// its events is appended to the job's partial text, which callers read
// through GET /ask/jobs/:jobId.
func (p *Pipeline) RunJob(ctx context.Context, store jobstore.Store, emitterCfg stream.Config, q domain.Question, ttl time.Duration) (domain.JobRecord, error) {
	job, err := store.Create(ctx, q.SessionID, q.TraceID, q.Prompt, ttl)
	if err != nil {
		return domain.JobRecord{}, fmt.Errorf("ask: create job: %w", err)
	}

	go p.runJobAsync(context.WithoutCancel(ctx), store, emitterCfg, job.ID, q)

	return job, nil
}

func (p *Pipeline) runJobAsync(ctx context.Context, store jobstore.Store, emitterCfg stream.Config, jobID string, q domain.Question) {
	if _, err := store.MarkRunning(ctx, jobID); err != nil {
		p.logger().ErrorContext(ctx, "mark job running failed", "job", jobID, "error", err)
		return
	}

	result, err := p.Answer(ctx, q)
	if err != nil {
		if failErr := store.Fail(ctx, jobID, err.Error()); failErr != nil {
			p.logger().ErrorContext(ctx, "fail job failed", "job", jobID, "error", failErr)
		}
		return
	}

	emitter := stream.New(emitterCfg)
	marked := "ANSWER_START" + result.Envelope.AnswerText + "ANSWER_END"
	for _, ev := range emitter.Feed(marked) {
		p.appendPartial(ctx, store, jobID, ev)
	}
	for _, ev := range emitter.Close() {
		p.appendPartial(ctx, store, jobID, ev)
	}

	if err := store.Complete(ctx, jobID, result.Envelope); err != nil {
		p.logger().ErrorContext(ctx, "complete job failed", "job", jobID, "error", err)
	}

	p.EmitTrajectory(ctx, q, result, domain.OriginLive)
}

func (p *Pipeline) appendPartial(ctx context.Context, store jobstore.Store, jobID string, ev stream.Event) {
	if ev.Text == "" {
		return
	}
	if err := store.AppendPartial(ctx, jobID, ev.Text); err != nil {
		p.logger().WarnContext(ctx, "append partial failed", "job", jobID, "error", err)
	}
}
