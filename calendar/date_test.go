package calendar_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/naturalization-engine/calendar"
)

func d(s string) calendar.Date { return calendar.MustParseDate(s) }

func TestDaysBetween_Signed(t *testing.T) {
	assert.Equal(t, 185, calendar.DaysBetween(d("2023-01-01"), d("2023-07-05")))
	assert.Equal(t, -185, calendar.DaysBetween(d("2023-07-05"), d("2023-01-01")))
	assert.Equal(t, 0, calendar.DaysBetween(d("2024-02-29"), d("2024-02-29")))
	assert.Equal(t, 366, calendar.DaysBetween(d("2024-01-01"), d("2025-01-01")), "leap year")
}

func TestMonthsBetween_CountsCompletedMonths(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     int
	}{
		{"same day", "2020-01-15", "2020-01-15", 0},
		{"one day short", "2020-01-15", "2020-02-14", 0},
		{"exact month", "2020-01-15", "2020-02-15", 1},
		{"across year", "2019-11-30", "2020-02-29", 2},
		{"backwards", "2020-02-15", "2020-01-15", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calendar.MonthsBetween(d(tt.from), d(tt.to)))
		})
	}
}

func TestYearsBetween_TruncatesToCompletedYears(t *testing.T) {
	// GIVEN: Born 2000-06-15
	// THEN: 17 the day before the 18th birthday, 18 on it
	dob := d("2000-06-15")
	assert.Equal(t, 17, calendar.YearsBetween(dob, d("2018-06-14")))
	assert.Equal(t, 18, calendar.YearsBetween(dob, d("2018-06-15")))
	assert.Equal(t, 25, calendar.YearsBetween(d("2000-01-01"), d("2025-06-01")))
}

func TestAddYears_ClampsLeapDay(t *testing.T) {
	assert.Equal(t, d("2021-02-28"), d("2020-02-29").AddYears(1))
	assert.Equal(t, d("2024-02-29"), d("2020-02-29").AddYears(4))
	assert.Equal(t, d("2023-02-28"), d("2023-01-31").AddMonths(1))
	assert.Equal(t, d("2022-12-31"), d("2023-01-31").AddMonths(-1))
}

func TestShift_AppliesYearsThenDays(t *testing.T) {
	tripEnd := d("2024-01-02")
	assert.Equal(t, d("2028-01-03"), calendar.Shift(tripEnd, calendar.Offset{Years: 4, Days: 1}))
	assert.Equal(t, d("2028-07-07"), calendar.Shift(tripEnd, calendar.Offset{Years: 5, Days: -179}))
}

func TestOverlaps_InclusiveBoundaries(t *testing.T) {
	assert.True(t, calendar.Overlaps(d("2020-01-01"), d("2020-01-10"), d("2020-01-10"), d("2020-02-01")))
	assert.True(t, calendar.Overlaps(d("2020-01-10"), d("2020-02-01"), d("2020-01-01"), d("2020-01-10")))
	assert.False(t, calendar.Overlaps(d("2020-01-01"), d("2020-01-09"), d("2020-01-10"), d("2020-02-01")))
}

func TestLaterOf(t *testing.T) {
	a, b := d("2025-01-01"), d("2026-01-01")

	assert.Nil(t, calendar.LaterOf(nil, nil))
	assert.Equal(t, a, *calendar.LaterOf(&a, nil))
	assert.Equal(t, b, *calendar.LaterOf(nil, &b))
	assert.Equal(t, b, *calendar.LaterOf(&a, &b))
	assert.Equal(t, b, *calendar.LaterOf(&b, &a))
	assert.Equal(t, b, *calendar.Latest(nil, &a, nil, &b))
}

func TestPeriodClip(t *testing.T) {
	window := calendar.Trailing(d("2025-06-01"), 5)
	assert.Equal(t, d("2020-06-01"), window.Start)

	trip := calendar.Period{Start: d("2020-05-01"), End: d("2020-06-11")}
	clipped, ok := trip.Clip(window)
	require.True(t, ok)
	assert.Equal(t, d("2020-06-01"), clipped.Start)
	assert.Equal(t, 10, clipped.Days())

	_, ok = calendar.Period{Start: d("2019-01-01"), End: d("2019-02-01")}.Clip(window)
	assert.False(t, ok)
}

func TestDate_TextRoundTripAndStrictParsing(t *testing.T) {
	var got struct {
		At calendar.Date `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"2024-02-29"}`), &got))
	assert.Equal(t, d("2024-02-29"), got.At)

	_, err := calendar.ParseDate("02/29/2024")
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)

	_, err = calendar.ParseDate("2023-02-29")
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)
}

func TestToday_UsesInjectedClock(t *testing.T) {
	now := time.Date(2025, time.June, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, d("2025-06-01"), calendar.Today(now))
}
