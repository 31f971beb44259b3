// Package store provides tracker.Store implementations.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/naturalization-engine/eligibility"
	"github.com/warp/naturalization-engine/tracker"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	profile *eligibility.Profile
	trips   []eligibility.Trip
}

var _ tracker.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{trips: []eligibility.Trip{}}
}

func (m *Memory) LoadProfile(_ context.Context) (*eligibility.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.profile == nil {
		return nil, nil
	}
	p := *m.profile
	return &p, nil
}

func (m *Memory) SaveProfile(_ context.Context, p eligibility.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profile = &p
	return nil
}

// LoadTrips returns a copy; callers may modify it freely.
func (m *Memory) LoadTrips(_ context.Context) ([]eligibility.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]eligibility.Trip, len(m.trips))
	copy(out, m.trips)
	return out, nil
}

func (m *Memory) SaveTrips(_ context.Context, trips []eligibility.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.trips = make([]eligibility.Trip, len(trips))
	copy(m.trips, trips)
	return nil
}

func (m *Memory) Replace(_ context.Context, p *eligibility.Profile, trips []eligibility.Trip) error {
	seen := make(map[string]bool, len(trips))
	for _, t := range trips {
		if seen[t.ID] {
			return fmt.Errorf("%w: %s", tracker.ErrDuplicateTripID, t.ID)
		}
		seen[t.ID] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.profile = nil
	if p != nil {
		cp := *p
		m.profile = &cp
	}
	m.trips = make([]eligibility.Trip, len(trips))
	copy(m.trips, trips)
	return nil
}

func (m *Memory) Wipe(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profile = nil
	m.trips = []eligibility.Trip{}
	return nil
}
