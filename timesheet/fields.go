package timesheet

// FieldMap names the SharePoint list columns an entry is written to.
type FieldMap struct {
	Classification  string              `json:"classification,omitempty"`
	Project         string              `json:"project,omitempty"`
	Days            [DaysPerWeek]string `json:"days,omitempty"`
	Accomplishments string              `json:"accomplishments,omitempty"`
	EndDate         string              `json:"endDate,omitempty"`
}

// DefaultFieldMap matches the columns of the timesheet list. SharePoint encodes a
// leading "D" of internal names as _x0044_.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		Classification:  "Classification",
		Project:         "Project",
		Days:            [DaysPerWeek]string{"_x0044_ay1", "_x0044_ay2", "_x0044_ay3", "_x0044_ay4", "_x0044_ay5"},
		Accomplishments: "Accomplishments",
		EndDate:         "EndDate",
	}
}

// WithDefaults fills blank column names from DefaultFieldMap.
func (m FieldMap) WithDefaults() FieldMap {
	def := DefaultFieldMap()
	if m.Classification == "" {
		m.Classification = def.Classification
	}
	if m.Project == "" {
		m.Project = def.Project
	}
	for i := range m.Days {
		if m.Days[i] == "" {
			m.Days[i] = def.Days[i]
		}
	}
	if m.Accomplishments == "" {
		m.Accomplishments = def.Accomplishments
	}
	if m.EndDate == "" {
		m.EndDate = def.EndDate
	}
	return m
}

// Fields renders e as the opaque fields mapping of a remote list item.
// Hour slots are sent as typed, the remote list does its own validation.
func (m FieldMap) Fields(e Entry, week Week) map[string]any {
	m = m.WithDefaults()
	out := map[string]any{
		m.Classification:  e.Classification,
		m.Project:         e.Project,
		m.Accomplishments: e.Accomplishments,
		m.EndDate:         week.End().Format(EndDateLayout),
	}
	for i, day := range e.Days {
		out[m.Days[i]] = day
	}
	return out
}
