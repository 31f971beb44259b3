package eligibility

import (
	"fmt"

	"github.com/warp/naturalization-engine/calendar"
)

// =============================================================================
// FINDING - Structured blocker or warning
// =============================================================================

// Code identifies the rule that produced a Finding. Codes are stable; the
// English text from Message() is not.
type Code string

const (
	CodeNoProfile               Code = "no_profile"
	CodeUnderage                Code = "underage"
	CodeTenureShort             Code = "tenure_short"
	CodeStateResidenceShort     Code = "state_residence_short"
	CodeContinuityBroken        Code = "continuity_broken"
	CodePresenceShort           Code = "presence_short"
	CodeAbsenceBreaksContinuity Code = "absence_breaks_continuity"
	CodeAbsenceRisk             Code = "absence_risk"
)

// Params carries the values a Finding refers to. Only the fields relevant to
// the Code are set.
type Params struct {
	Age          *int           `json:"age,omitempty"`
	Days         int            `json:"days,omitempty"`
	Date         *calendar.Date `json:"date,omitempty"`
	State        string         `json:"state,omitempty"`
	Destination  string         `json:"destination,omitempty"`
	TripStart    *calendar.Date `json:"tripStart,omitempty"`
	RequiredDays int            `json:"requiredDays,omitempty"`
	WindowYears  int            `json:"windowYears,omitempty"`
}

type Finding struct {
	Code   Code   `json:"code"`
	Params Params `json:"params"`
}

// Message renders the finding as English text for display.
func (f Finding) Message() string {
	p := f.Params
	switch f.Code {
	case CodeNoProfile:
		return "No profile configured"
	case CodeUnderage:
		age := 0
		if p.Age != nil {
			age = *p.Age
		}
		return fmt.Sprintf("Must be %d years old (currently %d)", MinimumAge, age)
	case CodeTenureShort:
		return fmt.Sprintf("Need %d more days as LPR (eligible on %s)", p.Days, formatDate(p.Date))
	case CodeStateResidenceShort:
		return fmt.Sprintf("Need %d more days in %s (eligible on %s)", p.Days, p.State, formatDate(p.Date))
	case CodeContinuityBroken:
		return "Continuous residence broken by absence of 1+ year"
	case CodePresenceShort:
		return fmt.Sprintf("Need %d more days of physical presence in the US (requires %d days in last %d years)",
			p.Days, p.RequiredDays, p.WindowYears)
	case CodeAbsenceBreaksContinuity:
		return fmt.Sprintf("Trip to %s (%s) was %d days (>= 1 year) - breaks continuous residence",
			destination(p.Destination), formatDate(p.TripStart), p.Days)
	case CodeAbsenceRisk:
		return fmt.Sprintf("Trip to %s (%s) was %d days (> 6 months) - may affect continuous residence",
			destination(p.Destination), formatDate(p.TripStart), p.Days)
	default:
		return string(f.Code)
	}
}

func (f Finding) String() string { return f.Message() }

func formatDate(d *calendar.Date) string {
	if d == nil {
		return "unknown date"
	}
	return d.Time.Format("January 2, 2006")
}

func destination(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// Messages renders a list of findings.
func Messages(findings []Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Message()
	}
	return out
}

// Codes returns the codes of findings, in order.
func Codes(findings []Finding) []Code {
	out := make([]Code, len(findings))
	for i, f := range findings {
		out[i] = f.Code
	}
	return out
}
