// Package daterange maps named filter presets to concrete calendar date
// ranges in the viewer's local time. Dates are always built from local
// year/month/day components, never from a UTC serialization, so a viewer
// just past midnight in a zone ahead of UTC still gets the right day.
package daterange

import (
	"fmt"
	"time"
)

// Preset is a named shorthand for a date range used to filter appointments.
type Preset string

const (
	Today     Preset = "today"
	ThisWeek  Preset = "this_week"
	ThisMonth Preset = "this_month"
	All       Preset = "all"
)

// Presets lists all valid presets in display order.
var Presets = []Preset{Today, ThisWeek, ThisMonth, All}

// Valid reports whether p is a known preset.
func (p Preset) Valid() bool {
	switch p {
	case Today, ThisWeek, ThisMonth, All:
		return true
	}
	return false
}

// Range is an inclusive calendar date range. Either bound may be empty:
// an empty end with a set start means open-ended from start, and a fully
// empty range means unfiltered.
type Range struct {
	Start string
	End   string
}

// IsZero reports whether both bounds are empty.
func (r Range) IsZero() bool {
	return r.Start == "" && r.End == ""
}

// FormatDate renders t's local calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	year, month, day := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// ForPreset resolves a preset against the reference instant now:
//
//   - today:      start = now's date, end empty
//   - this_week:  the Sunday..Saturday window containing now
//   - this_month: first through last day of now's month
//   - all:        both bounds empty
//
// Week and month boundaries use plain calendar arithmetic via time.Date,
// which normalizes out-of-range components, so windows spanning a month or
// year boundary come out right without special cases.
func ForPreset(p Preset, now time.Time) (Range, error) {
	year, month, day := now.Date()
	loc := now.Location()

	switch p {
	case Today:
		return Range{Start: FormatDate(now)}, nil
	case ThisWeek:
		weekStart := time.Date(year, month, day-int(now.Weekday()), 0, 0, 0, 0, loc)
		weekEnd := weekStart.AddDate(0, 0, 6)
		return Range{Start: FormatDate(weekStart), End: FormatDate(weekEnd)}, nil
	case ThisMonth:
		monthStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		// Day zero of the next month is the last day of this one.
		monthEnd := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
		return Range{Start: FormatDate(monthStart), End: FormatDate(monthEnd)}, nil
	case All:
		return Range{}, nil
	}
	return Range{}, fmt.Errorf("unknown date preset: %q", p)
}
