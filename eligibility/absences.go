package eligibility

import (
	"github.com/warp/naturalization-engine/calendar"
)

// =============================================================================
// ABSENCE ANALYSIS - Continuity tiers and recovery dates
// =============================================================================
//
// Tiers for a counted trip of d = End - Start days overlapping [lprDate, asOf]:
//
//   d >= 365        continuity broken (blocker raised by Evaluate) + warning
//   180 < d < 365   continuity risk, warning only
//   d <= 180        counted in totals only
//
// For the general path, both upper tiers also produce recovery dates:
//
//   earliest  = End + 4y + 1d     fileable if the continuity objection is rebutted
//   lowerRisk = End + 5y - 179d   the trip has rolled out of the 5-year lookback
//                                 far enough to sit under the risk threshold
//
// The latest date across all qualifying trips is the binding one.

// AnalyzeAbsences classifies trips against the continuous-residence window.
func AnalyzeAbsences(trips []Trip, lprDate, asOf calendar.Date, path Path) Absences {
	req := path.Requirements()
	window := calendar.Period{Start: lprDate, End: asOf}

	out := Absences{
		LongAbsences: []Trip{},
		Warnings:     []Finding{},
	}

	for _, t := range trips {
		if !t.CountsAsAbsence || !t.Period().Overlaps(window) {
			continue
		}
		days := t.Days()
		out.TotalTrips++
		out.TotalDaysAbsent += days
		if days >= ContinuityRiskDays {
			out.LongAbsences = append(out.LongAbsences, t)
		}

		var code Code
		switch {
		case days >= ContinuityBreakDays:
			out.ContinuityBroken = true
			code = CodeAbsenceBreaksContinuity
		case days > ContinuityRiskDays:
			code = CodeAbsenceRisk
		default:
			continue
		}

		start := t.Start
		out.Warnings = append(out.Warnings, Finding{
			Code:   code,
			Params: Params{Destination: t.Destination, TripStart: &start, Days: days},
		})

		if req.ComputesRecovery {
			earliest := calendar.Shift(t.End, calendar.Offset{Years: 4, Days: 1})
			lowerRisk := calendar.Shift(t.End, calendar.Offset{Years: 5, Days: -LowerRiskLookbackDays})
			out.EarliestPossibleAfterContinuityIssue = calendar.LaterOf(out.EarliestPossibleAfterContinuityIssue, &earliest)
			out.LowerRiskAfterContinuityIssue = calendar.LaterOf(out.LowerRiskAfterContinuityIssue, &lowerRisk)
		}
	}

	return out
}
