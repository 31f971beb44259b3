package eligibility

import (
	"github.com/shopspring/decimal"

	"github.com/warp/naturalization-engine/calendar"
)

// =============================================================================
// RESULT - Output of Evaluate, never mutated after return
// =============================================================================

type Result struct {
	Eligible            bool           `json:"eligible"`
	Blockers            []Finding      `json:"blockers"`
	Warnings            []Finding      `json:"warnings"`
	Metrics             *Metrics       `json:"metrics"`
	EarliestFilingDate  *calendar.Date `json:"earliestFilingDate"`
	LowerRiskFilingDate *calendar.Date `json:"lowerRiskFilingDate"`
}

// BlockerMessages renders blockers as text.
func (r Result) BlockerMessages() []string { return Messages(r.Blockers) }

// WarningMessages renders warnings as text.
func (r Result) WarningMessages() []string { return Messages(r.Warnings) }

// NoProfileResult is the fixed result returned when no profile is configured.
func NoProfileResult() Result {
	return Result{
		Eligible: false,
		Blockers: []Finding{{Code: CodeNoProfile}},
		Warnings: []Finding{},
	}
}

// =============================================================================
// METRICS
// =============================================================================

type Metrics struct {
	Age              AgeMetric            `json:"age"`
	GreenCardTime    GreenCardMetric      `json:"greenCardTime"`
	StateResidence   StateResidenceMetric `json:"stateResidence"`
	Absences         Absences             `json:"absences"`
	PhysicalPresence Presence             `json:"physicalPresence"`
}

type AgeMetric struct {
	Current  int  `json:"current"`
	Required int  `json:"required"`
	Met      bool `json:"met"`
}

type GreenCardMetric struct {
	DaysSinceLPR    int           `json:"daysSinceLPR"`
	DaysRequired    int           `json:"daysRequired"`
	TargetDate      calendar.Date `json:"targetDate"`
	EarlyFilingDate calendar.Date `json:"earlyFilingDate"`
	Met             bool          `json:"met"`
}

type StateResidenceMetric struct {
	Days         int           `json:"days"`
	Required     int           `json:"required"`
	Met          bool          `json:"met"`
	State        string        `json:"state"`
	EligibleDate calendar.Date `json:"eligibleDate"`
}

// Absences is the output of AnalyzeAbsences.
type Absences struct {
	TotalTrips                           int            `json:"totalTrips"`
	TotalDaysAbsent                      int            `json:"totalDaysAbsent"`
	ContinuityBroken                     bool           `json:"continuityBroken"`
	LongAbsences                         []Trip         `json:"longAbsences"`
	Warnings                             []Finding      `json:"warnings"`
	EarliestPossibleAfterContinuityIssue *calendar.Date `json:"earliestPossibleAfterContinuityIssue"`
	LowerRiskAfterContinuityIssue        *calendar.Date `json:"lowerRiskAfterContinuityIssue"`
}

// Presence is the output of CalculatePresence.
type Presence struct {
	DaysInUS             int             `json:"daysInUS"`
	DaysAbroad           int             `json:"daysAbroad"`
	TotalWindowDays      int             `json:"totalDays"`
	WindowYears          int             `json:"windowYears"`
	RequiredDays         int             `json:"requiredDaysInUS"`
	Met                  bool            `json:"met"`
	ShortageDays         int             `json:"shortage"`
	PercentOfRequirement decimal.Decimal `json:"percentOfRequirement"`
}
