package mcp

import (
	"time"

	"github.com/viant/mcp-timesheet/graph"
	"github.com/viant/mcp-timesheet/timesheet"
)

// SheetInput addresses one week's timesheet of an account.
type SheetInput struct {
	Account graph.Account `json:"account"`
	Week    string        `json:"week,omitempty" description:"any date (YYYY-MM-DD) within the target week; defaults to the current week"`
}

type AddEntryInput struct {
	SheetInput
	Classification  string   `json:"classification,omitempty"`
	Project         string   `json:"project,omitempty"`
	Days            []string `json:"days,omitempty" description:"hours Monday to Friday, up to five values"`
	Accomplishments string   `json:"accomplishments,omitempty"`
}

type UpdateEntryInput struct {
	SheetInput
	ID    string `json:"id,omitempty" description:"entry id (preferred)"`
	Index *int   `json:"index,omitempty" description:"zero-based entry position, used when id is empty"`
	Field string `json:"field" description:"classification, project, accomplishments, or a weekday Mon..Fri"`
	Value string `json:"value"`
}

type RemoveEntryInput struct {
	SheetInput
	ID string `json:"id"`
}

type SubmitInput struct {
	SheetInput
	// EntryIDs limits submission to these entries, e.g. to resend failures.
	EntryIDs []string `json:"entryIds,omitempty" description:"submit only these entries (default all)"`
}

type CalendarViewInput struct {
	graph.CalendarViewInput
	Week string `json:"week,omitempty" description:"any date (YYYY-MM-DD) of a week; used when startISO/endISO are empty"`
}

// EntryView is an entry with its derived totals.
type EntryView struct {
	timesheet.Entry
	Total     float64  `json:"total"`
	OverLimit bool     `json:"overLimit,omitempty"`
	Invalid   []string `json:"invalid,omitempty"`
	Warning   string   `json:"warning,omitempty"`
}

// SheetView is a week's timesheet as shown to the user.
type SheetView struct {
	Week    string      `json:"week"`
	EndDate string      `json:"endDate"`
	Entries []EntryView `json:"entries"`
	Total   float64     `json:"total"`
	// Copied counts entries added by timesheetCopyPreviousWeek.
	Copied int `json:"copied,omitempty"`
}

type SaveOutput struct {
	URL     string    `json:"url"`
	Week    string    `json:"week"`
	Entries int       `json:"entries"`
	SavedAt time.Time `json:"savedAt"`
}

// DiscardOutput reports the draft that was dropped.
type DiscardOutput struct {
	URL  string `json:"url"`
	Week string `json:"week"`
}

type SubmitResult struct {
	EntryID string `json:"entryId"`
	ItemID  string `json:"itemId,omitempty"`
	Error   string `json:"error,omitempty"`
}

type SubmitOutput struct {
	Week      string         `json:"week"`
	Submitted int            `json:"submitted"`
	Failed    int            `json:"failed"`
	Results   []SubmitResult `json:"results"`
}

func newSheetView(sheet *timesheet.Sheet) *SheetView {
	week := sheet.Week()
	out := &SheetView{
		Week:    week.Key(),
		EndDate: week.End().Format(timesheet.EndDateLayout),
		Entries: make([]EntryView, 0, sheet.Len()),
	}
	for _, e := range sheet.Entries() {
		s := timesheet.Summarize(e)
		out.Entries = append(out.Entries, EntryView{Entry: e, Total: s.Total, OverLimit: s.OverLimit, Invalid: s.Invalid, Warning: s.Warning})
		out.Total += s.Total
	}
	return out
}
