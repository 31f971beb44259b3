package calendar

// =============================================================================
// PERIOD - Closed interval of calendar days
// =============================================================================

// Period is the closed interval [Start, End].
//
// Examples:
//   - Tenure since LPR:         [lprDate, asOf]
//   - Presence lookback window: [asOf - 5 years, asOf]
//   - A trip abroad:            [departure, return]
type Period struct {
	Start Date
	End   Date
}

// Trailing returns the window [asOf - years, asOf].
func Trailing(asOf Date, years int) Period {
	return Period{Start: asOf.AddYears(-years), End: asOf}
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Overlaps reports whether p and other share at least one day.
func (p Period) Overlaps(other Period) bool {
	return Overlaps(p.Start, p.End, other.Start, other.End)
}

// Clip returns the part of p inside bounds. ok is false when they do not overlap.
func (p Period) Clip(bounds Period) (clipped Period, ok bool) {
	if !p.Overlaps(bounds) {
		return Period{}, false
	}
	clipped = p
	if clipped.Start.Before(bounds.Start) {
		clipped.Start = bounds.Start
	}
	if clipped.End.After(bounds.End) {
		clipped.End = bounds.End
	}
	return clipped, true
}

// Days returns End - Start in whole days.
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// Overlaps reports whether the closed intervals [aStart, aEnd] and [bStart, bEnd]
// intersect. Boundaries are inclusive.
func Overlaps(aStart, aEnd, bStart, bEnd Date) bool {
	return aStart.BeforeOrEqual(bEnd) && aEnd.AfterOrEqual(bStart)
}
