package timesheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxWeeklyHours is the soft per-row limit; exceeding it only raises a warning.
const MaxWeeklyHours = 40.0

// OverLimitWarning is shown for rows above MaxWeeklyHours.
const OverLimitWarning = "Total hours per row should not exceed 40."

// ParseHours converts one hour slot. Blank slots count as zero.
func ParseHours(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHours, value)
	}
	return v, nil
}

// TotalHours sums the five hour slots of e.
// Any non-numeric slot fails the whole sum rather than yielding a partial total.
func TotalHours(e Entry) (float64, error) {
	var total float64
	for i, day := range e.Days {
		v, err := ParseHours(day)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", DayNames[i], err)
		}
		total += v
	}
	return total, nil
}

// OverLimit reports whether the valid hour slots of e total more than
// MaxWeeklyHours; unparsable slots count as zero, as in Summarize.
func OverLimit(e Entry) bool {
	return Summarize(e).OverLimit
}

// Summary is the derived, display-only state of one entry.
type Summary struct {
	ID        string   `json:"id"`
	Total     float64  `json:"total"`
	OverLimit bool     `json:"overLimit,omitempty"`
	Invalid   []string `json:"invalid,omitempty"`
	Warning   string   `json:"warning,omitempty"`
}

// Summarize computes totals and warnings for e. Invalid slots are listed by day
// name and contribute nothing to Total. OverLimit is judged on that partial
// total, so a row can carry both warnings; the invalid-hours one comes first.
func Summarize(e Entry) Summary {
	s := Summary{ID: e.ID}
	for i, day := range e.Days {
		v, err := ParseHours(day)
		if err != nil {
			s.Invalid = append(s.Invalid, DayNames[i])
			continue
		}
		s.Total += v
	}
	s.OverLimit = s.Total > MaxWeeklyHours
	var warnings []string
	if len(s.Invalid) > 0 {
		warnings = append(warnings, "Hours must be numbers: "+strings.Join(s.Invalid, ", ")+".")
	}
	if s.OverLimit {
		warnings = append(warnings, OverLimitWarning)
	}
	s.Warning = strings.Join(warnings, " ")
	return s
}
