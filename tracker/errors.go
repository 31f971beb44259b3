package tracker

import (
	"errors"
	"fmt"

	"github.com/warp/naturalization-engine/calendar"
	"github.com/warp/naturalization-engine/eligibility"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrTripNotFound is returned when a trip ID does not exist.
	ErrTripNotFound = errors.New("trip not found")

	// ErrProfileNotFound is returned when an operation needs a saved profile.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidCSV is returned when a CSV import cannot be read at all.
	ErrInvalidCSV = errors.New("invalid CSV")

	// ErrDuplicateTripID is returned when two trips in one list share an ID.
	ErrDuplicateTripID = errors.New("duplicate trip id")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// RowError describes one CSV line that was skipped during import.
type RowError struct {
	Line int   `json:"line"`
	Err  error `json:"-"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return eligibility.IsValidationError(err) ||
		errors.Is(err, calendar.ErrInvalidDate) ||
		errors.Is(err, eligibility.ErrUnknownPath) ||
		errors.Is(err, ErrInvalidCSV) ||
		errors.Is(err, ErrDuplicateTripID)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTripNotFound) ||
		errors.Is(err, ErrProfileNotFound)
}
