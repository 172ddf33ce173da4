// Package jobstore persists async Ask jobs: created when a caller posts a
// question in background mode, updated as partial text streams in, and
// resolved once the pipeline completes or fails.
package jobstore

import (
	"context"
	"errors"
	"time"

	"basegraph.app/helixask/internal/domain"
)

// ErrNotFound is returned by Get when the job id is unknown or its record
// has already been pruned.
var ErrNotFound = errors.New("jobstore: job not found")

// ErrExpired is returned by Get when the job's TTL has passed. The store
// treats an expired record the same as a missing one for callers, but
// callers that care about the distinction can check for this error
// specifically before it's pruned.
var ErrExpired = errors.New("jobstore: job expired")

// Store is the job store contract. Writes for a given job id are
// linearized: two concurrent appendPartial or complete calls against the
// same id never interleave into a corrupted record.
type Store interface {
	Create(ctx context.Context, sessionID, traceID, question string, ttl time.Duration) (domain.JobRecord, error)
	MarkRunning(ctx context.Context, id string) (bool, error)
	AppendPartial(ctx context.Context, id, chunk string) error
	Complete(ctx context.Context, id string, result domain.AnswerEnvelope) error
	Fail(ctx context.Context, id string, errMsg string) error
	Get(ctx context.Context, id string) (domain.JobRecord, error)
	Prune(ctx context.Context) (int, error)
	Close() error
}
