package feestore

import (
	"context"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/civil"
)

// Memory is an in-process Store for tests and single-instance deployments.
type Memory struct {
	mu        sync.RWMutex
	schedules []Schedule // sorted by EffectiveFrom
	now       func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// Put adds a version, keeping the slice ordered by effective date.
func (m *Memory) Put(_ context.Context, s Schedule) (Schedule, error) {
	s, err := prepare(s, m.now())
	if err != nil {
		return Schedule{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := sort.Search(len(m.schedules), func(i int) bool {
		return !m.schedules[i].EffectiveFrom.Before(s.EffectiveFrom)
	})
	if i < len(m.schedules) && m.schedules[i].EffectiveFrom == s.EffectiveFrom {
		return Schedule{}, ErrDuplicateEffectiveDate
	}

	m.schedules = append(m.schedules, Schedule{})
	copy(m.schedules[i+1:], m.schedules[i:])
	m.schedules[i] = s
	return s, nil
}

// EffectiveAt returns the version in force on date.
func (m *Memory) EffectiveAt(_ context.Context, date civil.Date) (Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := sort.Search(len(m.schedules), func(i int) bool {
		return m.schedules[i].EffectiveFrom.After(date)
	})
	if i == 0 {
		return Schedule{}, ErrNotFound
	}
	return m.schedules[i-1], nil
}

// List returns a copy of every version.
func (m *Memory) List(_ context.Context) ([]Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Schedule, len(m.schedules))
	copy(out, m.schedules)
	return out, nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
