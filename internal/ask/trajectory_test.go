package ask_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/ask"
	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/gates"
	"basegraph.app/helixask/internal/trajectory"
)

type fakeGovernor struct {
	admit bool
	stats trajectory.AlphaStats
	err   error
}

func (f fakeGovernor) Admit(_ context.Context, _ domain.TrajectoryOrigin) (bool, trajectory.AlphaStats, error) {
	return f.admit, f.stats, f.err
}

type fakeTrajectoryStore struct {
	saved []domain.Trajectory
	err   error
}

func (f *fakeTrajectoryStore) SaveTrajectory(_ context.Context, t domain.Trajectory) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, t)
	return nil
}

func testResult() ask.Result {
	report := gates.Report{Verdicts: []gates.Verdict{{Gate: "evidence", Passed: true}, {Gate: "claim", Passed: true}}}
	return ask.Result{
		Envelope: domain.AnswerEnvelope{AnswerText: "the retriever fuses four channels", Format: domain.FormatBrief, EvidenceRefs: []string{"internal/retriever/retriever.go"}},
		Gates:    report,
		Evidence: domain.EvidencePack{Files: []string{"internal/retriever/retriever.go"}, TopScore: 0.8},
		Domain:   domain.DomainRepo,
		Tags:     []string{"helix-ask"},
	}
}

func TestEmitTrajectorySkipsWithoutGovernorOrStore(t *testing.T) {
	p := &ask.Pipeline{}
	p.EmitTrajectory(context.Background(), domain.Question{Prompt: "why?"}, testResult(), domain.OriginLive)
}

func TestEmitTrajectorySavesWhenAdmitted(t *testing.T) {
	store := &fakeTrajectoryStore{}
	p := &ask.Pipeline{Governor: fakeGovernor{admit: true}, Trajectories: store}

	p.EmitTrajectory(context.Background(), domain.Question{Prompt: "how does retrieval fuse channels?"}, testResult(), domain.OriginLive)

	require.Len(t, store.saved, 1)
	saved := store.saved[0]
	assert.Equal(t, domain.OriginLive, saved.Origin)
	assert.Equal(t, []string{"helix-ask"}, saved.IntentTags)
	assert.Contains(t, saved.Citations, "internal/retriever/retriever.go")
}

func TestEmitTrajectorySkipsWhenDenied(t *testing.T) {
	store := &fakeTrajectoryStore{}
	p := &ask.Pipeline{Governor: fakeGovernor{admit: false}, Trajectories: store}

	p.EmitTrajectory(context.Background(), domain.Question{Prompt: "variant sub-call"}, testResult(), domain.OriginVariant)

	assert.Empty(t, store.saved)
}

func TestEmitTrajectorySkipsOnGovernorError(t *testing.T) {
	store := &fakeTrajectoryStore{}
	p := &ask.Pipeline{Governor: fakeGovernor{err: assert.AnError}, Trajectories: store}

	p.EmitTrajectory(context.Background(), domain.Question{Prompt: "why?"}, testResult(), domain.OriginLive)

	assert.Empty(t, store.saved)
}
