/*
Package calendar provides day-granularity date arithmetic for the eligibility engine.

PURPOSE:
  Every rule in the engine is expressed in whole calendar days, months or years.
  This package wraps time.Time at midnight UTC so that day counts are exact and
  comparisons never depend on a wall-clock time or a location.

KEY CONCEPTS:
  - Date:   A calendar day (no time of day, always UTC midnight)
  - Period: A closed interval [Start, End] of dates (see period.go)
  - Offset: A years/months/days shift applied with Shift()

MONTH ARITHMETIC:
  AddMonths/AddYears clamp the day-of-month to the length of the target month:
    2020-02-29 + 1 year  = 2021-02-28
    2023-01-31 + 1 month = 2023-02-28
  MonthsBetween/YearsBetween count COMPLETED months/years only.

CLOCK:
  Nothing in this package reads the system clock. Callers convert an injected
  time.Time with Today().

SEE ALSO:
  - period.go: Windows, clipping and overlap
  - eligibility/engine.go: The rules built on top of these helpers
*/
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ISOLayout is the only accepted textual form of a Date.
const ISOLayout = "2006-01-02"

// ErrInvalidDate is returned when text cannot be parsed as a YYYY-MM-DD date.
var ErrInvalidDate = errors.New("invalid date")

// =============================================================================
// DATE - Calendar day at midnight UTC
// =============================================================================

type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime drops the time of day, keeping the calendar day as seen in t's location.
func FromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today converts a clock reading into a Date. The clock is always injected.
func Today(now time.Time) Date {
	return FromTime(now)
}

// ParseDate parses a strict YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return FromTime(t), nil
}

// MustParseDate panics on malformed input. Intended for tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return d.addMonthsClamped(n) }
func (d Date) AddYears(n int) Date  { return d.addMonthsClamped(12 * n) }

func (d Date) addMonthsClamped(n int) Date {
	total := int(d.Month()) - 1 + n
	year := d.Year() + floorDiv(total, 12)
	month := time.Month(total - 12*floorDiv(total, 12) + 1)
	day := d.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return NewDate(year, month, day)
}

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

// Ptr returns a pointer to a copy of d, for optional date fields.
func (d Date) Ptr() *Date { return &d }

func (d Date) String() string {
	return d.Time.Format(ISOLayout)
}

// MarshalText implements encoding.TextMarshaler (JSON, CSV, SQL text columns).
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// OFFSET - Combined shift
// =============================================================================

// Offset is a signed shift. Years and months are applied first (clamped), then days.
type Offset struct {
	Years  int
	Months int
	Days   int
}

// Shift returns d moved by o.
func Shift(d Date, o Offset) Date {
	return d.addMonthsClamped(12*o.Years + o.Months).AddDays(o.Days)
}

// =============================================================================
// DIFFERENCES
// =============================================================================

// DaysBetween returns to - from in whole days. Negative when to is before from.
func DaysBetween(from, to Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

// MonthsBetween returns the number of completed calendar months from from to to.
// A month is completed once the day-of-month of from is reached again.
func MonthsBetween(from, to Date) int {
	if to.Before(from) {
		return -MonthsBetween(to, from)
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return months
}

// YearsBetween returns completed years, truncating: MonthsBetween/12.
func YearsBetween(from, to Date) int {
	return MonthsBetween(from, to) / 12
}

// =============================================================================
// OPTIONAL DATES
// =============================================================================

// LaterOf returns whichever date is later. A nil date loses to a present one;
// two nils yield nil. Used to fold independent constraint dates.
func LaterOf(a, b *Date) *Date {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.After(*b) {
		return a
	}
	return b
}

// Latest folds LaterOf over dates.
func Latest(dates ...*Date) *Date {
	var out *Date
	for _, d := range dates {
		out = LaterOf(out, d)
	}
	return out
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
