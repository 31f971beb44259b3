/*
Package eligibility implements the naturalization eligibility calculation engine.

PURPOSE:
  Evaluate() is a pure function of (profile, trips, asOf). It runs every rule,
  collects blockers and warnings as structured Findings, fills a fixed-shape
  Metrics record and recommends filing dates. It never persists, never reads
  the clock and never fails.

KEY CONCEPTS IN THIS FILE (types.go):
  - Path:    Eligibility path (5-year general or 3-year spouse of a citizen)
  - Profile: Residency facts supplied by the caller
  - Trip:    One absence from the country
  - Result:  The evaluation output (see result.go)

RULES (engine.go):
  1. Age:             18+ completed years
  2. Tenure:          N years as LPR, fileable 90 days early
  3. State residence: 90 days in the current state
  4. Continuity:      absences >180 days warn, >=365 days break (absences.go)
  5. Presence:        913/548 days inside the country in the last 5/3 years (presence.go)

VALIDATION:
  Invariants (End >= Start, LPR >= birth, ...) are checked by NewProfile and
  NewTrip at the boundary. Evaluate assumes valid input.

SEE ALSO:
  - calendar/: Date arithmetic
  - tracker/: Loads records and calls Evaluate
*/
package eligibility

import (
	"fmt"
	"strings"

	"github.com/warp/naturalization-engine/calendar"
)

// =============================================================================
// PATH - Which eligibility track applies
// =============================================================================

type Path string

const (
	PathGeneral Path = "5-year"
	PathSpouse  Path = "3-year-spouse"
)

// ParsePath accepts the stored values plus a few aliases. Empty means general.
func ParsePath(s string) (Path, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "5-year", "general", "5":
		return PathGeneral, nil
	case "3-year-spouse", "spouseof3year", "spouse", "3-year", "3":
		return PathSpouse, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPath, s)
	}
}

// Requirements are the fixed thresholds of a path.
type Requirements struct {
	TenureYears         int
	PresenceWindowYears int
	PresenceDays        int
	ComputesRecovery    bool
}

// Requirements returns the thresholds for p. Unknown values fall back to general.
func (p Path) Requirements() Requirements {
	if p == PathSpouse {
		return Requirements{TenureYears: 3, PresenceWindowYears: 3, PresenceDays: 548}
	}
	return Requirements{TenureYears: 5, PresenceWindowYears: 5, PresenceDays: 913, ComputesRecovery: true}
}

// Rule constants shared by the checks.
const (
	MinimumAge            = 18
	EarlyFilingDays       = 90
	StateResidenceDays    = 90
	ContinuityBreakDays   = 365
	ContinuityRiskDays    = 180
	LowerRiskLookbackDays = 179
)

// =============================================================================
// PROFILE
// =============================================================================

type Profile struct {
	DateOfBirth         calendar.Date `json:"dob"`
	LPRDate             calendar.Date `json:"lprDate"`
	Path                Path          `json:"eligibilityPath"`
	State               string        `json:"state"`
	StateResidenceSince calendar.Date `json:"stateResidenceDate"`
}

// NewProfile validates the invariants and returns an immutable profile.
func NewProfile(dob, lpr calendar.Date, path Path, state string, stateSince calendar.Date) (Profile, error) {
	p := Profile{
		DateOfBirth:         dob,
		LPRDate:             lpr,
		Path:                path,
		State:               strings.TrimSpace(state),
		StateResidenceSince: stateSince,
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks the profile invariants.
func (p Profile) Validate() error {
	switch {
	case p.DateOfBirth.IsZero():
		return &ValidationError{Field: "dob", Err: ErrMissingDate}
	case p.LPRDate.IsZero():
		return &ValidationError{Field: "lprDate", Err: ErrMissingDate}
	case p.StateResidenceSince.IsZero():
		return &ValidationError{Field: "stateResidenceDate", Err: ErrMissingDate}
	case p.LPRDate.Before(p.DateOfBirth):
		return &ValidationError{Field: "lprDate", Err: ErrLPRBeforeBirth}
	case p.StateResidenceSince.Before(p.LPRDate):
		return &ValidationError{Field: "stateResidenceDate", Err: ErrStateBeforeLPR}
	}
	if _, err := ParsePath(string(p.Path)); err != nil {
		return &ValidationError{Field: "eligibilityPath", Err: err}
	}
	return nil
}

// =============================================================================
// TRIP
// =============================================================================

type Trip struct {
	ID              string        `json:"id"`
	Start           calendar.Date `json:"startDate"`
	End             calendar.Date `json:"endDate"`
	Destination     string        `json:"destination"`
	CountsAsAbsence bool          `json:"countAsAbsence"`
}

// NewTrip validates End >= Start. Trips count as absences unless excluded later.
func NewTrip(start, end calendar.Date, destination string) (Trip, error) {
	t := Trip{Start: start, End: end, Destination: destination, CountsAsAbsence: true}
	if err := t.Validate(); err != nil {
		return Trip{}, err
	}
	return t, nil
}

// Validate checks the trip invariants.
func (t Trip) Validate() error {
	switch {
	case t.Start.IsZero():
		return &ValidationError{Field: "startDate", Err: ErrMissingDate}
	case t.End.IsZero():
		return &ValidationError{Field: "endDate", Err: ErrMissingDate}
	case t.End.Before(t.Start):
		return &ValidationError{Field: "endDate", Err: ErrTripEndsBeforeStart}
	}
	return nil
}

// Period returns [Start, End].
func (t Trip) Period() calendar.Period { return calendar.Period{Start: t.Start, End: t.End} }

// Days is the trip length as End - Start.
func (t Trip) Days() int { return calendar.DaysBetween(t.Start, t.End) }
