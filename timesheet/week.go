package timesheet

import "time"

// KeyLayout formats Week.Key.
const KeyLayout = "2006-01-02"

// EndDateLayout is how the remote list stores the week end date.
const EndDateLayout = "01/02/2006"

// Week is a Monday-to-Friday working week.
type Week struct {
	// Start is Monday 00:00 in the week's location.
	Start time.Time
}

// WeekOf returns the week containing t, in t's location.
func WeekOf(t time.Time) Week {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return Week{Start: day.AddDate(0, 0, -offset)}
}

// ParseWeek resolves a YYYY-MM-DD date to its week in loc.
func ParseWeek(value string, loc *time.Location) (Week, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(KeyLayout, value, loc)
	if err != nil {
		return Week{}, err
	}
	return WeekOf(t), nil
}

// Day returns the date of slot i (0 = Monday).
func (w Week) Day(i int) time.Time { return w.Start.AddDate(0, 0, i) }

// End returns Friday of the week.
func (w Week) End() time.Time { return w.Day(DaysPerWeek - 1) }

// Prev returns the preceding week.
func (w Week) Prev() Week { return Week{Start: w.Start.AddDate(0, 0, -7)} }

// Next returns the following week.
func (w Week) Next() Week { return Week{Start: w.Start.AddDate(0, 0, 7)} }

// Key identifies the week by its Monday date.
func (w Week) Key() string { return w.Start.Format(KeyLayout) }

// Bounds returns the calendar-view window for the week: Monday 00:00 to Saturday 00:00.
func (w Week) Bounds() (start, end time.Time) {
	return w.Start, w.Start.AddDate(0, 0, DaysPerWeek)
}
