package timesheet

import (
	"fmt"
	"time"
)

// Sheet owns the ordered entries of one week. Every mutation replaces the entry
// slice, so slices returned by Entries are never modified afterwards.
// A Sheet is not safe for concurrent use.
type Sheet struct {
	week    Week
	entries []Entry
}

// NewSheet returns an empty sheet for week.
func NewSheet(week Week) *Sheet {
	return &Sheet{week: week}
}

// Week returns the sheet's week.
func (s *Sheet) Week() Week { return s.week }

// Len returns the number of entries.
func (s *Sheet) Len() int { return len(s.entries) }

// Entries returns the current entries in order.
func (s *Sheet) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// AddEntry appends an empty entry and returns it.
func (s *Sheet) AddEntry() Entry {
	e := NewEntry()
	s.replace(append(s.Entries(), e))
	return e
}

// Entry returns the entry with id.
func (s *Sheet) Entry(id string) (Entry, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return s.entries[i], nil
}

// At returns the entry at position index.
func (s *Sheet) At(index int) (Entry, error) {
	if index < 0 || index >= len(s.entries) {
		return Entry{}, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	return s.entries[index], nil
}

// UpdateField sets one field of the entry with id, leaving every other field
// and every other entry untouched.
func (s *Sheet) UpdateField(id string, field Field, value string) (Entry, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return s.updateAt(i, field, value)
}

// UpdateFieldAt is the positional form of UpdateField.
func (s *Sheet) UpdateFieldAt(index int, field Field, value string) (Entry, error) {
	if index < 0 || index >= len(s.entries) {
		return Entry{}, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	return s.updateAt(index, field, value)
}

// RemoveEntry deletes the entry with id.
func (s *Sheet) RemoveEntry(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	next := make([]Entry, 0, len(s.entries)-1)
	next = append(next, s.entries[:i]...)
	next = append(next, s.entries[i+1:]...)
	s.replace(next)
	return nil
}

// CopyFrom appends the rows of prev with fresh identifiers. Only classification
// and project carry over; hours and accomplishments start empty.
func (s *Sheet) CopyFrom(prev *Sheet) []Entry {
	if prev == nil {
		return nil
	}
	next := s.Entries()
	added := make([]Entry, 0, prev.Len())
	for _, p := range prev.entries {
		e := NewEntry()
		e.Classification = p.Classification
		e.Project = p.Project
		added = append(added, e)
	}
	s.replace(append(next, added...))
	return added
}

// Summaries returns the derived totals for every entry, in order.
func (s *Sheet) Summaries() []Summary {
	out := make([]Summary, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, Summarize(e))
	}
	return out
}

func (s *Sheet) updateAt(i int, field Field, value string) (Entry, error) {
	updated, err := s.entries[i].with(field, value)
	if err != nil {
		return Entry{}, err
	}
	next := s.Entries()
	next[i] = updated
	s.replace(next)
	return updated, nil
}

func (s *Sheet) replace(entries []Entry) { s.entries = entries }

func (s *Sheet) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Draft is the serialized form of a sheet.
type Draft struct {
	Week    string    `json:"week"`
	Entries []Entry   `json:"entries"`
	SavedAt time.Time `json:"savedAt,omitempty"`
}

// Draft captures the sheet for persistence.
func (s *Sheet) Draft() *Draft {
	return &Draft{Week: s.week.Key(), Entries: s.Entries()}
}

// FromDraft rebuilds a sheet, resolving the week in loc.
func FromDraft(d *Draft, loc *time.Location) (*Sheet, error) {
	week, err := ParseWeek(d.Week, loc)
	if err != nil {
		return nil, fmt.Errorf("draft week: %w", err)
	}
	s := NewSheet(week)
	entries := make([]Entry, len(d.Entries))
	copy(entries, d.Entries)
	s.replace(entries)
	return s, nil
}
