package jobstore

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/core"
)

// MemoryJobStore is an in-memory implementation of the JobStore
// interface. Jobs do not survive a restart; it exists for tests and for
// running without a database.
type MemoryJobStore struct {
	mu     sync.RWMutex
	jobs   map[int]*core.ScheduledJob
	logger *zap.Logger
}

// NewMemoryJobStore creates a new in-memory job store
func NewMemoryJobStore(logger *zap.Logger) *MemoryJobStore {
	return &MemoryJobStore{
		jobs:   make(map[int]*core.ScheduledJob),
		logger: logger,
	}
}

// Put stores a job, replacing any existing entry for the lead
func (s *MemoryJobStore) Put(ctx context.Context, job *core.ScheduledJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *job
	s.jobs[job.LeadID] = &stored
	return nil
}

// Get retrieves a job by lead id, nil if absent
func (s *MemoryJobStore) Get(ctx context.Context, leadID int) (*core.ScheduledJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[leadID]
	if !ok {
		return nil, nil
	}
	found := *job
	return &found, nil
}

// Delete removes a job entry; absence is not an error
func (s *MemoryJobStore) Delete(ctx context.Context, leadID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.jobs, leadID)
	return nil
}

// List returns all persisted jobs
func (s *MemoryJobStore) List(ctx context.Context) ([]*core.ScheduledJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*core.ScheduledJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		found := *job
		jobs = append(jobs, &found)
	}
	return jobs, nil
}

// Close is a no-op for the in-memory store
func (s *MemoryJobStore) Close() error {
	return nil
}
