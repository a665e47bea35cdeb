package timesheet

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWeek() Week {
	return WeekOf(time.Date(2023, 6, 20, 10, 0, 0, 0, time.UTC))
}

func TestSheet_AddEntry(t *testing.T) {
	for _, n := range []int{0, 1, 3, 10} {
		sheet := NewSheet(testWeek())
		ids := map[string]bool{}
		for i := 0; i < n; i++ {
			e := sheet.AddEntry()
			ids[e.ID] = true
		}
		require.Equal(t, n, sheet.Len())
		assert.Len(t, ids, n, "ids must be unique")
		for _, e := range sheet.Entries() {
			assert.NotEmpty(t, e.ID)
			assert.Empty(t, e.Classification)
			assert.Empty(t, e.Project)
			assert.Empty(t, e.Accomplishments)
			assert.Equal(t, [DaysPerWeek]string{"", "", "", "", ""}, e.Days)
		}
	}
}

func TestSheet_UpdateField_DaySlot(t *testing.T) {
	for day := 0; day < DaysPerWeek; day++ {
		sheet := NewSheet(testWeek())
		a := sheet.AddEntry()
		b := sheet.AddEntry()
		_, err := sheet.UpdateField(a.ID, FieldProject, "apollo")
		require.NoError(t, err)
		before, err := sheet.Entry(a.ID)
		require.NoError(t, err)

		updated, err := sheet.UpdateField(a.ID, DayField(day), "7.5")
		require.NoError(t, err)

		for i := 0; i < DaysPerWeek; i++ {
			if i == day {
				assert.Equal(t, "7.5", updated.Days[i])
				continue
			}
			assert.Equal(t, before.Days[i], updated.Days[i], "day %d changed", i)
		}
		assert.Equal(t, "apollo", updated.Project)
		other, err := sheet.Entry(b.ID)
		require.NoError(t, err)
		assert.Equal(t, b, other)
	}
}

func TestSheet_UpdateField_DoesNotAliasSnapshots(t *testing.T) {
	sheet := NewSheet(testWeek())
	sheet.AddEntry()
	second := sheet.AddEntry()
	snapshot := sheet.Entries()

	_, err := sheet.UpdateField(second.ID, DayField(0), "8")
	require.NoError(t, err)
	_, err = sheet.UpdateField(second.ID, FieldClassification, "dev")
	require.NoError(t, err)

	assert.Equal(t, "", snapshot[1].Days[0])
	assert.Equal(t, "", snapshot[1].Classification)
	current := sheet.Entries()
	assert.Equal(t, snapshot[0], current[0])
	assert.Equal(t, "8", current[1].Days[0])
}

func TestSheet_UpdateOnlySecondEntry(t *testing.T) {
	sheet := NewSheet(testWeek())
	first := sheet.AddEntry()
	sheet.AddEntry()

	for _, field := range []Field{FieldClassification, FieldProject, FieldAccomplishments, DayField(2)} {
		_, err := sheet.UpdateFieldAt(1, field, "x")
		require.NoError(t, err)
	}
	got, err := sheet.At(0)
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestSheet_Errors(t *testing.T) {
	sheet := NewSheet(testWeek())
	e := sheet.AddEntry()

	_, err := sheet.UpdateField("missing", FieldProject, "x")
	assert.True(t, errors.Is(err, ErrEntryNotFound))

	_, err = sheet.UpdateFieldAt(1, FieldProject, "x")
	assert.True(t, errors.Is(err, ErrInvalidIndex))
	_, err = sheet.UpdateFieldAt(-1, FieldProject, "x")
	assert.True(t, errors.Is(err, ErrInvalidIndex))

	_, err = sheet.UpdateField(e.ID, DayField(5), "1")
	assert.True(t, errors.Is(err, ErrInvalidField))
	_, err = sheet.UpdateField(e.ID, Field(0), "1")
	assert.True(t, errors.Is(err, ErrInvalidField))

	_, err = sheet.At(3)
	assert.True(t, errors.Is(err, ErrInvalidIndex))
}

func TestSheet_RemoveEntry_KeepsIdentity(t *testing.T) {
	sheet := NewSheet(testWeek())
	a := sheet.AddEntry()
	b := sheet.AddEntry()
	c := sheet.AddEntry()

	require.NoError(t, sheet.RemoveEntry(a.ID))
	assert.Equal(t, 2, sheet.Len())

	_, err := sheet.UpdateField(c.ID, DayField(4), "3")
	require.NoError(t, err)
	gotB, _ := sheet.Entry(b.ID)
	gotC, _ := sheet.Entry(c.ID)
	assert.Equal(t, b, gotB)
	assert.Equal(t, "3", gotC.Days[4])

	assert.True(t, errors.Is(sheet.RemoveEntry(a.ID), ErrEntryNotFound))
}

func TestSheet_CopyFrom(t *testing.T) {
	prev := NewSheet(testWeek().Prev())
	e := prev.AddEntry()
	_, _ = prev.UpdateField(e.ID, FieldClassification, "billable")
	_, _ = prev.UpdateField(e.ID, FieldProject, "atlas")
	_, _ = prev.UpdateField(e.ID, DayField(0), "8")
	_, _ = prev.UpdateField(e.ID, FieldAccomplishments, "shipped")

	sheet := NewSheet(testWeek())
	sheet.AddEntry()
	added := sheet.CopyFrom(prev)

	require.Len(t, added, 1)
	assert.Equal(t, 2, sheet.Len())
	assert.NotEqual(t, e.ID, added[0].ID)
	assert.Equal(t, "billable", added[0].Classification)
	assert.Equal(t, "atlas", added[0].Project)
	assert.Empty(t, added[0].Days[0])
	assert.Empty(t, added[0].Accomplishments)
	assert.Nil(t, sheet.CopyFrom(nil))
}

func TestSheet_DraftRoundTrip(t *testing.T) {
	sheet := NewSheet(testWeek())
	e := sheet.AddEntry()
	_, _ = sheet.UpdateField(e.ID, DayField(1), "4")

	restored, err := FromDraft(sheet.Draft(), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, sheet.Week().Key(), restored.Week().Key())
	assert.Equal(t, sheet.Entries(), restored.Entries())
}

func TestParseField(t *testing.T) {
	cases := map[string]Field{
		"classification":  FieldClassification,
		"class":           FieldClassification,
		"project":         FieldProject,
		"accomplishments": FieldAccomplishments,
		"Mon":             DayField(0),
		"fri":             DayField(4),
	}
	for name, want := range cases {
		got, err := ParseField(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseField("sat")
	assert.True(t, errors.Is(err, ErrInvalidField))
	assert.Equal(t, "Wed", DayField(2).String())
}
