/*
Package tracker is the collaborator layer around the eligibility engine.

PURPOSE:
  Validates raw user input at the boundary, persists the profile and trip
  history through a Store, and feeds those records to eligibility.Evaluate.
  The engine itself stays pure; everything stateful lives here.

OPERATIONS:
  Profile:  Profile, UpdateProfile
  Trips:    Trips (newest first), AddTrip, UpdateTrip, DeleteTrip, ImportCSV
  Engine:   Evaluate
  Data:     Export, Restore, Wipe

CONCURRENCY:
  Trip mutations are load-modify-save on the whole list, so they are
  serialized by a mutex. Evaluate only reads.

SEE ALSO:
  - store.go: Persistence interface
  - csv.go: CSV trip import
  - export.go: Data pack export/restore
*/
package tracker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/naturalization-engine/calendar"
	"github.com/warp/naturalization-engine/eligibility"
	"github.com/warp/naturalization-engine/metrics"
)

// Service wires a Store to the engine.
type Service struct {
	Store   Store
	Metrics *metrics.Metrics

	newID func() string
	mu    sync.Mutex
}

// NewService creates a service over store. m may be nil.
func NewService(store Store, m *metrics.Metrics) *Service {
	return &Service{
		Store:   store,
		Metrics: m,
		newID:   uuid.NewString,
	}
}

// =============================================================================
// INPUTS - Raw strings from forms, CSV or JSON
// =============================================================================

// ProfileInput is the unvalidated profile as entered by the user.
type ProfileInput struct {
	DateOfBirth         string `json:"dob"`
	LPRDate             string `json:"lprDate"`
	EligibilityPath     string `json:"eligibilityPath"`
	State               string `json:"state"`
	StateResidenceSince string `json:"stateResidenceDate"`
}

// Parse validates the input and builds a Profile.
func (in ProfileInput) Parse() (eligibility.Profile, error) {
	dob, err := parseField("dob", in.DateOfBirth)
	if err != nil {
		return eligibility.Profile{}, err
	}
	lpr, err := parseField("lprDate", in.LPRDate)
	if err != nil {
		return eligibility.Profile{}, err
	}
	since, err := parseField("stateResidenceDate", in.StateResidenceSince)
	if err != nil {
		return eligibility.Profile{}, err
	}
	path, err := eligibility.ParsePath(in.EligibilityPath)
	if err != nil {
		return eligibility.Profile{}, &eligibility.ValidationError{Field: "eligibilityPath", Err: err}
	}
	return eligibility.NewProfile(dob, lpr, path, in.State, since)
}

// TripInput is the unvalidated trip as entered by the user. A nil
// CountsAsAbsence means true.
type TripInput struct {
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	Destination     string `json:"destination"`
	CountsAsAbsence *bool  `json:"countAsAbsence,omitempty"`
}

// Parse validates the input and builds a Trip without an ID.
func (in TripInput) Parse() (eligibility.Trip, error) {
	start, err := parseField("startDate", in.StartDate)
	if err != nil {
		return eligibility.Trip{}, err
	}
	end, err := parseField("endDate", in.EndDate)
	if err != nil {
		return eligibility.Trip{}, err
	}
	trip, err := eligibility.NewTrip(start, end, strings.TrimSpace(in.Destination))
	if err != nil {
		return eligibility.Trip{}, err
	}
	if in.CountsAsAbsence != nil {
		trip.CountsAsAbsence = *in.CountsAsAbsence
	}
	return trip, nil
}

func parseField(field, value string) (calendar.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return calendar.Date{}, &eligibility.ValidationError{Field: field, Err: eligibility.ErrMissingDate}
	}
	d, err := calendar.ParseDate(value)
	if err != nil {
		return calendar.Date{}, &eligibility.ValidationError{Field: field, Err: err}
	}
	return d, nil
}

// =============================================================================
// PROFILE
// =============================================================================

// Profile returns the current profile or nil when none is configured.
func (s *Service) Profile(ctx context.Context) (*eligibility.Profile, error) {
	p, err := s.Store.LoadProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// UpdateProfile validates in and replaces the current profile.
func (s *Service) UpdateProfile(ctx context.Context, in ProfileInput) (eligibility.Profile, error) {
	p, err := in.Parse()
	if err != nil {
		return eligibility.Profile{}, err
	}
	if err := s.Store.SaveProfile(ctx, p); err != nil {
		return eligibility.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// =============================================================================
// TRIPS
// =============================================================================

// Trips returns all trips, most recent departure first.
func (s *Service) Trips(ctx context.Context) ([]eligibility.Trip, error) {
	trips, err := s.Store.LoadTrips(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trips: %w", err)
	}
	SortNewestFirst(trips)
	return trips, nil
}

// SortNewestFirst orders trips by start date, latest first. Ties keep their order.
func SortNewestFirst(trips []eligibility.Trip) {
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].Start.After(trips[j].Start)
	})
}

// AddTrip validates in, assigns an ID and appends the trip.
func (s *Service) AddTrip(ctx context.Context, in TripInput) (eligibility.Trip, error) {
	trip, err := in.Parse()
	if err != nil {
		return eligibility.Trip{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := s.Store.LoadTrips(ctx)
	if err != nil {
		return eligibility.Trip{}, fmt.Errorf("load trips: %w", err)
	}
	trip.ID = s.newID()
	if err := s.Store.SaveTrips(ctx, append(trips, trip)); err != nil {
		return eligibility.Trip{}, fmt.Errorf("save trips: %w", err)
	}
	return trip, nil
}

// UpdateTrip replaces the trip with the given ID.
func (s *Service) UpdateTrip(ctx context.Context, id string, in TripInput) (eligibility.Trip, error) {
	trip, err := in.Parse()
	if err != nil {
		return eligibility.Trip{}, err
	}
	trip.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := s.Store.LoadTrips(ctx)
	if err != nil {
		return eligibility.Trip{}, fmt.Errorf("load trips: %w", err)
	}
	i := indexOf(trips, id)
	if i < 0 {
		return eligibility.Trip{}, fmt.Errorf("%w: %s", ErrTripNotFound, id)
	}
	trips[i] = trip
	if err := s.Store.SaveTrips(ctx, trips); err != nil {
		return eligibility.Trip{}, fmt.Errorf("save trips: %w", err)
	}
	return trip, nil
}

// DeleteTrip removes the trip with the given ID.
func (s *Service) DeleteTrip(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := s.Store.LoadTrips(ctx)
	if err != nil {
		return fmt.Errorf("load trips: %w", err)
	}
	i := indexOf(trips, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTripNotFound, id)
	}
	trips = append(trips[:i], trips[i+1:]...)
	if err := s.Store.SaveTrips(ctx, trips); err != nil {
		return fmt.Errorf("save trips: %w", err)
	}
	return nil
}

func indexOf(trips []eligibility.Trip, id string) int {
	for i, t := range trips {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// ENGINE
// =============================================================================

// Evaluate loads the current records and runs the engine as of asOf.
// A missing profile is not an error: the engine reports it as a blocker.
func (s *Service) Evaluate(ctx context.Context, asOf calendar.Date) (eligibility.Result, error) {
	profile, err := s.Profile(ctx)
	if err != nil {
		return eligibility.Result{}, err
	}
	trips, err := s.Store.LoadTrips(ctx)
	if err != nil {
		return eligibility.Result{}, fmt.Errorf("load trips: %w", err)
	}

	started := time.Now()
	result := eligibility.Evaluate(profile, trips, asOf)
	s.Metrics.ObserveEvaluation(result, time.Since(started))
	return result, nil
}

// Wipe deletes all stored data.
func (s *Service) Wipe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Store.Wipe(ctx); err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	return nil
}
