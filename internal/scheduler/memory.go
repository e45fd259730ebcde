package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps jobs in process. Jobs are lost on restart.
type MemoryStore struct {
	mu   sync.Mutex
	jobs []Job
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(_ context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *MemoryStore) ClaimDue(_ context.Context, now time.Time, limit int) ([]Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.jobs, func(i, j int) bool { return s.jobs[i].RunAt.Before(s.jobs[j].RunAt) })

	n := 0
	for n < len(s.jobs) && !s.jobs[n].RunAt.After(now) && (limit <= 0 || n < limit) {
		n++
	}
	due := make([]Job, n)
	copy(due, s.jobs[:n])
	s.jobs = append(s.jobs[:0], s.jobs[n:]...)
	return due, nil
}

// Ack is a no-op: claimed jobs already left the store.
func (s *MemoryStore) Ack(context.Context, string) error {
	return nil
}

// Len returns the number of pending jobs.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
