package eligibility

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Boundary validation only; Evaluate never returns errors
// =============================================================================

var (
	// ErrMissingDate is returned when a required date field is zero.
	ErrMissingDate = errors.New("date is required")

	// ErrTripEndsBeforeStart is returned when a trip's end date precedes its start.
	ErrTripEndsBeforeStart = errors.New("end date must not be before start date")

	// ErrLPRBeforeBirth is returned when the LPR date precedes the date of birth.
	ErrLPRBeforeBirth = errors.New("LPR date must not be before date of birth")

	// ErrStateBeforeLPR is returned when state residence starts before the LPR date.
	ErrStateBeforeLPR = errors.New("state residence must not start before LPR date")

	// ErrUnknownPath is returned for an unrecognized eligibility path.
	ErrUnknownPath = errors.New("unknown eligibility path")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError returns true if err came from Profile or Trip validation.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
