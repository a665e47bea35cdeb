package timesheet

import "github.com/google/uuid"

// DaysPerWeek is the number of working-day hour slots on an entry (Mon–Fri).
const DaysPerWeek = 5

// DayNames labels the hour slots in order.
var DayNames = [DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri"}

// Entry is one timesheet row.
type Entry struct {
	// ID is assigned on creation and never changes.
	ID             string              `json:"id"`
	Classification string              `json:"classification"`
	Project        string              `json:"project"`
	Days           [DaysPerWeek]string `json:"days"`
	// Accomplishments is free text describing the work.
	Accomplishments string `json:"accomplishments"`
}

// NewEntry returns an empty entry with a fresh identifier.
func NewEntry() Entry {
	return Entry{ID: uuid.New().String()}
}

// Field identifies an editable entry field.
type Field int

const (
	// FieldClassification is the classification label.
	FieldClassification Field = iota + 1
	// FieldProject is the project label.
	FieldProject
	// FieldAccomplishments is the free-text description.
	FieldAccomplishments
	// fieldDay0 is the first hour slot; DayField offsets from it.
	fieldDay0 Field = 100
)

// DayField returns the Field for the hour slot at day (0 = Monday).
func DayField(day int) Field {
	return fieldDay0 + Field(day)
}

// Day reports the slot index for an hour field.
func (f Field) Day() (int, bool) {
	if f < fieldDay0 || f >= fieldDay0+DaysPerWeek {
		return 0, false
	}
	return int(f - fieldDay0), true
}

func (f Field) String() string {
	switch f {
	case FieldClassification:
		return "classification"
	case FieldProject:
		return "project"
	case FieldAccomplishments:
		return "accomplishments"
	}
	if d, ok := f.Day(); ok {
		return DayNames[d]
	}
	return "unknown"
}

// ParseField resolves a field name (as produced by String, case-insensitive for day names).
func ParseField(name string) (Field, error) {
	switch name {
	case "classification", "class":
		return FieldClassification, nil
	case "project":
		return FieldProject, nil
	case "accomplishments":
		return FieldAccomplishments, nil
	}
	for i, d := range DayNames {
		if equalFold(name, d) {
			return DayField(i), nil
		}
	}
	return 0, invalidField(name)
}

// with returns a copy of e with field set to value.
func (e Entry) with(field Field, value string) (Entry, error) {
	switch field {
	case FieldClassification:
		e.Classification = value
	case FieldProject:
		e.Project = value
	case FieldAccomplishments:
		e.Accomplishments = value
	default:
		d, ok := field.Day()
		if !ok {
			return e, invalidField(field.String())
		}
		e.Days[d] = value
	}
	return e, nil
}
