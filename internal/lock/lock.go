// Package lock serializes game mutations per team, plus one global section for
// detecting that a game has finished.
package lock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Manager hands out per-team locks and the global finish lock. Waiters on the
// same team are admitted in arrival order.
type Manager struct {
	mu     sync.Mutex
	teams  map[string]*semaphore.Weighted
	global *semaphore.Weighted
}

// NewManager creates an empty lock manager.
func NewManager() *Manager {
	return &Manager{
		teams:  make(map[string]*semaphore.Weighted),
		global: semaphore.NewWeighted(1),
	}
}

// WithTeamLock runs fn while holding the lock of teamID.
func (m *Manager) WithTeamLock(ctx context.Context, teamID string, fn func(ctx context.Context) error) error {
	return run(ctx, m.team(teamID), fn)
}

// WithGlobalLock runs fn while holding the global lock.
func (m *Manager) WithGlobalLock(ctx context.Context, fn func(ctx context.Context) error) error {
	return run(ctx, m.global, fn)
}

// ClearAll forgets every team lock. Goroutines already holding or waiting on a
// forgotten lock finish against it; later callers get fresh locks.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams = make(map[string]*semaphore.Weighted)
}

// Len returns the number of team locks currently tracked.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.teams)
}

func (m *Manager) team(teamID string) *semaphore.Weighted {
	m.mu.Lock()
	defer m.mu.Unlock()
	sem, ok := m.teams[teamID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		m.teams[teamID] = sem
	}
	return sem
}

func run(ctx context.Context, sem *semaphore.Weighted, fn func(ctx context.Context) error) error {
	if err := sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer sem.Release(1)
	return fn(ctx)
}
