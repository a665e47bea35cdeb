package timesheet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryWithDays(days ...string) Entry {
	e := NewEntry()
	copy(e.Days[:], days)
	return e
}

func TestTotalHours(t *testing.T) {
	testCases := []struct {
		description string
		days        []string
		expect      float64
		overLimit   bool
	}{
		{description: "full week", days: []string{"8", "8", "8", "8", "4"}, expect: 36},
		{description: "over limit", days: []string{"40", "1", "0", "0", "0"}, expect: 41, overLimit: true},
		{description: "exactly limit", days: []string{"8", "8", "8", "8", "8"}, expect: 40},
		{description: "monday only", days: []string{"9", "", "", "", ""}, expect: 9},
		{description: "all empty", days: []string{"", "", "", "", ""}, expect: 0},
		{description: "fractions and spaces", days: []string{" 7.5 ", "0.5", "", "", ""}, expect: 8},
	}
	for _, tc := range testCases {
		e := entryWithDays(tc.days...)
		total, err := TotalHours(e)
		require.NoError(t, err, tc.description)
		assert.Equal(t, tc.expect, total, tc.description)
		assert.Equal(t, tc.overLimit, OverLimit(e), tc.description)
	}
}

func TestTotalHours_Invalid(t *testing.T) {
	for _, bad := range []string{"abc", "NaN", "Inf", "8h"} {
		e := entryWithDays("8", bad)
		_, err := TotalHours(e)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, ErrInvalidHours), bad)
		assert.Contains(t, err.Error(), "Tue")
		assert.False(t, OverLimit(e))
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(entryWithDays("40", "1"))
	assert.Equal(t, 41.0, s.Total)
	assert.True(t, s.OverLimit)
	assert.Equal(t, OverLimitWarning, s.Warning)

	s = Summarize(entryWithDays("9"))
	assert.Equal(t, 9.0, s.Total)
	assert.False(t, s.OverLimit)
	assert.Empty(t, s.Warning)

	s = Summarize(entryWithDays("8", "x", "8", "y"))
	assert.Equal(t, 16.0, s.Total)
	assert.Equal(t, []string{"Tue", "Thu"}, s.Invalid)
	assert.False(t, s.OverLimit)
	assert.Equal(t, "Hours must be numbers: Tue, Thu.", s.Warning)

	s = Summarize(entryWithDays("41", "x"))
	assert.Equal(t, 41.0, s.Total)
	assert.Equal(t, []string{"Tue"}, s.Invalid)
	assert.True(t, s.OverLimit)
	assert.True(t, OverLimit(entryWithDays("41", "x")))
	assert.Equal(t, "Hours must be numbers: Tue. "+OverLimitWarning, s.Warning)
}

func TestSheet_AddThenSetMonday(t *testing.T) {
	sheet := NewSheet(testWeek())
	e := sheet.AddEntry()
	_, err := sheet.UpdateField(e.ID, DayField(0), "9")
	require.NoError(t, err)

	summaries := sheet.Summaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, 9.0, summaries[0].Total)
	assert.Empty(t, summaries[0].Warning)
}
