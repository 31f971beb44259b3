package eligibility

import (
	"github.com/warp/naturalization-engine/calendar"
)

// Evaluate runs every eligibility rule for profile as of asOf. A nil profile
// yields NoProfileResult(). No check short-circuits another: all blockers and
// warnings are reported together.
//
// Evaluate is pure and safe for concurrent use.
func Evaluate(profile *Profile, trips []Trip, asOf calendar.Date) Result {
	if profile == nil {
		return NoProfileResult()
	}

	path, err := ParsePath(string(profile.Path))
	if err != nil {
		path = PathGeneral
	}
	req := path.Requirements()

	blockers := []Finding{}
	warnings := []Finding{}
	metrics := &Metrics{}

	// 1) Age
	age := calendar.YearsBetween(profile.DateOfBirth, asOf)
	metrics.Age = AgeMetric{Current: age, Required: MinimumAge, Met: age >= MinimumAge}
	if !metrics.Age.Met {
		blockers = append(blockers, Finding{Code: CodeUnderage, Params: Params{Age: &age}})
	}

	// 2) Time as LPR, fileable EarlyFilingDays before the anniversary
	target := profile.LPRDate.AddYears(req.TenureYears)
	earlyFiling := target.AddDays(-EarlyFilingDays)
	metrics.GreenCardTime = GreenCardMetric{
		DaysSinceLPR:    calendar.DaysBetween(profile.LPRDate, asOf),
		DaysRequired:    req.TenureYears * 365,
		TargetDate:      target,
		EarlyFilingDate: earlyFiling,
		Met:             !asOf.Before(earlyFiling),
	}
	if !metrics.GreenCardTime.Met {
		blockers = append(blockers, Finding{
			Code:   CodeTenureShort,
			Params: Params{Days: calendar.DaysBetween(asOf, earlyFiling), Date: earlyFiling.Ptr()},
		})
	}

	// 3) State residence
	daysInState := calendar.DaysBetween(profile.StateResidenceSince, asOf)
	stateEligible := profile.StateResidenceSince.AddDays(StateResidenceDays)
	metrics.StateResidence = StateResidenceMetric{
		Days:         daysInState,
		Required:     StateResidenceDays,
		Met:          daysInState >= StateResidenceDays,
		State:        profile.State,
		EligibleDate: stateEligible,
	}
	if !metrics.StateResidence.Met {
		blockers = append(blockers, Finding{
			Code: CodeStateResidenceShort,
			Params: Params{
				Days:  StateResidenceDays - daysInState,
				State: profile.State,
				Date:  stateEligible.Ptr(),
			},
		})
	}

	// 4) Continuous residence
	absences := AnalyzeAbsences(trips, profile.LPRDate, asOf, path)
	metrics.Absences = absences
	if absences.ContinuityBroken {
		blockers = append(blockers, Finding{Code: CodeContinuityBroken})
	}
	warnings = append(warnings, absences.Warnings...)

	// 5) Physical presence
	presence := CalculatePresence(trips, asOf, path)
	metrics.PhysicalPresence = presence
	if !presence.Met {
		blockers = append(blockers, Finding{
			Code: CodePresenceShort,
			Params: Params{
				Days:         presence.ShortageDays,
				RequiredDays: presence.RequiredDays,
				WindowYears:  presence.WindowYears,
			},
		})
	}

	// 6) Filing dates
	earliest := calendar.Latest(earlyFiling.Ptr(), stateEligible.Ptr(), absences.EarliestPossibleAfterContinuityIssue)
	var lowerRisk *calendar.Date
	if absences.LowerRiskAfterContinuityIssue != nil {
		lowerRisk = calendar.Latest(earlyFiling.Ptr(), stateEligible.Ptr(), absences.LowerRiskAfterContinuityIssue)
	}

	return Result{
		Eligible:            len(blockers) == 0,
		Blockers:            blockers,
		Warnings:            warnings,
		Metrics:             metrics,
		EarliestFilingDate:  earliest,
		LowerRiskFilingDate: lowerRisk,
	}
}
