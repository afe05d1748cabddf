package importer

import (
	"context"
	"sync"
	"time"

	"github.com/sewasangat/import-service/internal/core/domain"
)

// DefaultJobRetention is how long a terminal job stays poll-able before
// eviction.
const DefaultJobRetention = 5 * time.Minute

// MemoryJobStore is a process-local JobStore: a lock-guarded map with timer
// eviction. Suitable for single-instance deployments and tests; multi-instance
// deployments use the Redis-backed store so any instance can serve polls.
type MemoryJobStore struct {
	mu        sync.RWMutex
	jobs      map[string]domain.JobSnapshot
	timers    map[string]*time.Timer
	retention time.Duration
}

// NewMemoryJobStore creates an in-memory job store. retention <= 0 falls back
// to DefaultJobRetention.
func NewMemoryJobStore(retention time.Duration) *MemoryJobStore {
	if retention <= 0 {
		retention = DefaultJobRetention
	}
	return &MemoryJobStore{
		jobs:      make(map[string]domain.JobSnapshot),
		timers:    make(map[string]*time.Timer),
		retention: retention,
	}
}

// Create inserts a new job snapshot
func (s *MemoryJobStore) Create(ctx context.Context, snap domain.JobSnapshot) error {
	return s.Save(ctx, snap)
}

// Save updates a job snapshot in place. The first terminal save arms the
// eviction timer.
func (s *MemoryJobStore) Save(ctx context.Context, snap domain.JobSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[snap.ID] = snap

	if domain.IsTerminalJobStatus(snap.Status) {
		if _, armed := s.timers[snap.ID]; !armed {
			id := snap.ID
			s.timers[id] = time.AfterFunc(s.retention, func() {
				s.mu.Lock()
				defer s.mu.Unlock()
				delete(s.jobs, id)
				delete(s.timers, id)
			})
		}
	}
	return nil
}

// Get returns the current snapshot or ErrJobNotFound. An evicted id is
// indistinguishable from one that never existed.
func (s *MemoryJobStore) Get(ctx context.Context, id string) (domain.JobSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.jobs[id]
	if !ok {
		return domain.JobSnapshot{}, ErrJobNotFound
	}
	return snap, nil
}

// Delete removes a job immediately
func (s *MemoryJobStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	delete(s.jobs, id)
	return nil
}

// Len reports how many jobs are currently held
func (s *MemoryJobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
