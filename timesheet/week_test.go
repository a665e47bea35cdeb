package timesheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekOf(t *testing.T) {
	monday := time.Date(2023, 6, 19, 0, 0, 0, 0, time.UTC)
	for _, day := range []int{19, 20, 21, 23, 24, 25} {
		w := WeekOf(time.Date(2023, 6, day, 15, 30, 0, 0, time.UTC))
		assert.True(t, monday.Equal(w.Start), "day %d -> %v", day, w.Start)
	}
	w := WeekOf(monday)
	assert.Equal(t, "2023-06-19", w.Key())
	assert.Equal(t, "2023-06-23", w.End().Format(KeyLayout))
	assert.Equal(t, "2023-06-12", w.Prev().Key())
	assert.Equal(t, "2023-06-26", w.Next().Key())

	start, end := w.Bounds()
	assert.True(t, start.Equal(monday))
	assert.Equal(t, "2023-06-24", end.Format(KeyLayout))
}

func TestParseWeek(t *testing.T) {
	w, err := ParseWeek("2023-06-22", nil)
	require.NoError(t, err)
	assert.Equal(t, "2023-06-19", w.Key())

	_, err = ParseWeek("06/22/2023", time.UTC)
	assert.Error(t, err)
}

func TestFieldMap_Fields(t *testing.T) {
	e := NewEntry()
	e.Classification = "billable"
	e.Project = "atlas"
	e.Days[0] = "8"
	e.Accomplishments = "done"

	fields := FieldMap{Project: "ProjectCode"}.Fields(e, WeekOf(time.Date(2023, 6, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "8", fields["_x0044_ay1"])
	assert.Equal(t, "", fields["_x0044_ay5"])
	assert.Equal(t, "atlas", fields["ProjectCode"])
	assert.Equal(t, "billable", fields["Classification"])
	assert.Equal(t, "done", fields["Accomplishments"])
	assert.Equal(t, "06/23/2023", fields["EndDate"])
	assert.Len(t, fields, 9)
}
