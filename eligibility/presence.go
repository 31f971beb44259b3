package eligibility

import (
	"github.com/shopspring/decimal"

	"github.com/warp/naturalization-engine/calendar"
)

var hundred = decimal.NewFromInt(100)

// CalculatePresence counts days inside the country over the trailing window
// [asOf - windowYears, asOf] of path. Trips are clipped to the window; trips
// excluded from absence math contribute nothing.
func CalculatePresence(trips []Trip, asOf calendar.Date, path Path) Presence {
	req := path.Requirements()
	window := calendar.Trailing(asOf, req.PresenceWindowYears)

	daysAbroad := 0
	for _, t := range trips {
		if !t.CountsAsAbsence {
			continue
		}
		clipped, ok := t.Period().Clip(window)
		if !ok {
			continue
		}
		daysAbroad += clipped.Days()
	}

	total := window.Days()
	daysInUS := total - daysAbroad
	shortage := req.PresenceDays - daysInUS
	if shortage < 0 {
		shortage = 0
	}

	percent := decimal.Zero
	if req.PresenceDays > 0 {
		percent = decimal.NewFromInt(int64(daysInUS)).Mul(hundred).
			Div(decimal.NewFromInt(int64(req.PresenceDays))).Round(2)
	}

	return Presence{
		DaysInUS:             daysInUS,
		DaysAbroad:           daysAbroad,
		TotalWindowDays:      total,
		WindowYears:          req.PresenceWindowYears,
		RequiredDays:         req.PresenceDays,
		Met:                  daysInUS >= req.PresenceDays,
		ShortageDays:         shortage,
		PercentOfRequirement: percent,
	}
}
