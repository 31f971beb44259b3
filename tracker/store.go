/*
store.go - Persistence interface for the profile and trip history

PURPOSE:
  Defines the interface between the tracker and the database. The engine never
  touches storage: the tracker loads records through a Store and hands them to
  eligibility.Evaluate.

SLOTS:
  The application is single-user. Records live in fixed slots:
  - profile: "current"  (zero or one profile)
  - trips:   "all"      (the full trip list, replaced on every save)

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go:  SQLite
  - tracker/store/memory.go: In-memory for testing

SEE ALSO:
  - service.go: Higher-level operations using Store
*/
package tracker

import (
	"context"

	"github.com/warp/naturalization-engine/eligibility"
)

// Store persists the profile slot and the trip list.
type Store interface {
	// LoadProfile returns the current profile, or nil, nil when none is saved.
	LoadProfile(ctx context.Context) (*eligibility.Profile, error)

	// SaveProfile replaces the current profile.
	SaveProfile(ctx context.Context, p eligibility.Profile) error

	// LoadTrips returns all trips. Never nil.
	LoadTrips(ctx context.Context) ([]eligibility.Trip, error)

	// SaveTrips replaces the full trip list atomically.
	SaveTrips(ctx context.Context, trips []eligibility.Trip) error

	// Replace swaps the profile (nil clears it) and the trip list in one
	// step. On error the previous records are left untouched.
	Replace(ctx context.Context, p *eligibility.Profile, trips []eligibility.Trip) error

	// Wipe deletes the profile and every trip.
	Wipe(ctx context.Context) error
}
