package jobstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basegraph.app/helixask/internal/domain"
	"basegraph.app/helixask/internal/jobstore"
)

func newTestRedisStore(t *testing.T) *jobstore.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return jobstore.NewRedisStore(client)
}

func TestRedisStoreCreateThenGet(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()

	job, err := s.Create(ctx, "sess-1", "trace-1", "", time.Hour)
	require.NoError(t, err)

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobQueued, got.Status)
	assert.Equal(t, "sess-1", got.SessionID)
}

func TestRedisStoreAppendPartialConcatenatesUnderCAS(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()
	job, err := s.Create(ctx, "", "", "", time.Hour)
	require.NoError(t, err)

	require.NoError(t, s.AppendPartial(ctx, job.ID, "The retriever "))
	require.NoError(t, s.AppendPartial(ctx, job.ID, "fuses four channels."))

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "The retriever fuses four channels.", got.PartialText)
}

func TestRedisStoreCompleteStoresResult(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()
	job, err := s.Create(ctx, "", "", "", time.Hour)
	require.NoError(t, err)

	envelope := domain.AnswerEnvelope{AnswerText: "answer", Format: domain.FormatSteps, Tier: domain.TierF2}
	require.NoError(t, s.Complete(ctx, job.ID, envelope))

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "answer", got.Result.AnswerText)
	assert.Equal(t, domain.TierF2, got.Result.Tier)
}

func TestRedisStoreGetUnknownReturnsNotFound(t *testing.T) {
	s := newTestRedisStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, jobstore.ErrNotFound)
}

func TestRedisStoreExpiredJobReturnsExpired(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()
	job, err := s.Create(ctx, "", "", "", -time.Minute)
	require.NoError(t, err)

	_, err = s.Get(ctx, job.ID)
	assert.ErrorIs(t, err, jobstore.ErrExpired)
}
