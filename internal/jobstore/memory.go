package jobstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"basegraph.app/helixask/internal/domain"
)

// MemoryStore is an in-process Job Store used for tests and for a
// Redis-less single-process deployment mode. Each job id gets its own
// mutex so writes against different jobs never block each other, while
// writes against the same id are still strictly serialized.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]*jobEntry
}

type jobEntry struct {
	mu     sync.Mutex
	record domain.JobRecord
}

// NewMemoryStore constructs an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*jobEntry)}
}

func (s *MemoryStore) entry(id string) (*jobEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[id]
	return e, ok
}

func (s *MemoryStore) Create(_ context.Context, sessionID, traceID, _ string, ttl time.Duration) (domain.JobRecord, error) {
	now := time.Now()
	record := domain.JobRecord{
		ID:        uuid.NewString(),
		Status:    domain.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
		SessionID: sessionID,
		TraceID:   traceID,
	}

	s.mu.Lock()
	s.jobs[record.ID] = &jobEntry{record: record}
	s.mu.Unlock()

	return record, nil
}

func (s *MemoryStore) MarkRunning(_ context.Context, id string) (bool, error) {
	e, ok := s.entry(id)
	if !ok {
		return false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if isExpired(e.record) {
		return false, nil
	}
	e.record.Status = domain.JobRunning
	e.record.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryStore) AppendPartial(_ context.Context, id, chunk string) error {
	e, ok := s.entry(id)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if isExpired(e.record) {
		return ErrExpired
	}
	e.record.PartialText += chunk
	e.record.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) Complete(_ context.Context, id string, result domain.AnswerEnvelope) error {
	e, ok := s.entry(id)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if isExpired(e.record) {
		return ErrExpired
	}
	e.record.Status = domain.JobCompleted
	e.record.Result = &result
	e.record.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) Fail(_ context.Context, id string, errMsg string) error {
	e, ok := s.entry(id)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if isExpired(e.record) {
		return ErrExpired
	}
	e.record.Status = domain.JobFailed
	e.record.Error = errMsg
	e.record.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (domain.JobRecord, error) {
	e, ok := s.entry(id)
	if !ok {
		return domain.JobRecord{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if isExpired(e.record) {
		return domain.JobRecord{}, ErrExpired
	}
	return e.record, nil
}

func (s *MemoryStore) Prune(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, e := range s.jobs {
		e.mu.Lock()
		expired := isExpired(e.record)
		e.mu.Unlock()
		if expired {
			delete(s.jobs, id)
			pruned++
		}
	}
	return pruned, nil
}

func (s *MemoryStore) Close() error { return nil }

func isExpired(r domain.JobRecord) bool {
	return !r.ExpiresAt.IsZero() && time.Now().After(r.ExpiresAt)
}
