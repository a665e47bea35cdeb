package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/viant/mcp-timesheet/graph"
	"github.com/viant/mcp-timesheet/timesheet"
)

var errEmptySheet = errors.New("timesheet has no entries")

// sheetRef resolves the namespace, draft key and week addressed by in.
type sheetRef struct {
	namespace string
	account   graph.Account
	week      timesheet.Week
}

func (r sheetRef) key() string { return draftKey(r.namespace, r.account.Alias, r.week) }

func (s *Service) resolveSheet(ctx context.Context, in *SheetInput) (sheetRef, error) {
	if err := s.account(&in.Account); err != nil {
		return sheetRef{}, err
	}
	ns, err := s.namespace(ctx)
	if err != nil {
		return sheetRef{}, err
	}
	week, err := s.week(in.Week)
	if err != nil {
		return sheetRef{}, err
	}
	return sheetRef{namespace: ns, account: in.Account, week: week}, nil
}

func (s *Service) week(value string) (timesheet.Week, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return timesheet.WeekOf(s.now().In(s.loc)), nil
	}
	week, err := timesheet.ParseWeek(value, s.loc)
	if err != nil {
		return timesheet.Week{}, fmt.Errorf("invalid week %q, expected YYYY-MM-DD", value)
	}
	return week, nil
}

// withSheet runs fn on the working sheet of ref, loading the saved draft on first use.
func (s *Service) withSheet(ctx context.Context, ref sheetRef, fn func(*timesheet.Sheet) error) error {
	open := func() (*timesheet.Sheet, error) {
		sheet, err := s.store.Load(ctx, ref.namespace, ref.account.Alias, ref.week)
		if errors.Is(err, timesheet.ErrDraftNotFound) {
			return timesheet.NewSheet(ref.week), nil
		}
		return sheet, err
	}
	return s.drafts.With(ref.key(), open, fn)
}

// AddEntry appends a row, optionally pre-filled.
func (s *Service) AddEntry(ctx context.Context, in *AddEntryInput) (*SheetView, error) {
	if len(in.Days) > timesheet.DaysPerWeek {
		return nil, fmt.Errorf("%w: at most %d day values", timesheet.ErrInvalidField, timesheet.DaysPerWeek)
	}
	ref, err := s.resolveSheet(ctx, &in.SheetInput)
	if err != nil {
		return nil, err
	}
	var out *SheetView
	err = s.withSheet(ctx, ref, func(sheet *timesheet.Sheet) error {
		id := sheet.AddEntry().ID
		values := map[timesheet.Field]string{
			timesheet.FieldClassification:  in.Classification,
			timesheet.FieldProject:         in.Project,
			timesheet.FieldAccomplishments: in.Accomplishments,
		}
		for i, v := range in.Days {
			values[timesheet.DayField(i)] = v
		}
		for field, v := range values {
			if v == "" {
				continue
			}
			if _, err := sheet.UpdateField(id, field, v); err != nil {
				return err
			}
		}
		out = newSheetView(sheet)
		return nil
	})
	return out, err
}

// UpdateEntry sets one field of one entry, addressed by id or position.
func (s *Service) UpdateEntry(ctx context.Context, in *UpdateEntryInput) (*SheetView, error) {
	field, err := timesheet.ParseField(in.Field)
	if err != nil {
		return nil, err
	}
	if in.ID == "" && in.Index == nil {
		return nil, errors.New("id or index is required")
	}
	ref, err := s.resolveSheet(ctx, &in.SheetInput)
	if err != nil {
		return nil, err
	}
	var out *SheetView
	err = s.withSheet(ctx, ref, func(sheet *timesheet.Sheet) error {
		if in.ID != "" {
			_, err = sheet.UpdateField(in.ID, field, in.Value)
		} else {
			_, err = sheet.UpdateFieldAt(*in.Index, field, in.Value)
		}
		if err != nil {
			return err
		}
		out = newSheetView(sheet)
		return nil
	})
	return out, err
}

func (s *Service) RemoveEntry(ctx context.Context, in *RemoveEntryInput) (*SheetView, error) {
	if in.ID == "" {
		return nil, errors.New("id is required")
	}
	ref, err := s.resolveSheet(ctx, &in.SheetInput)
	if err != nil {
		return nil, err
	}
	var out *SheetView
	err = s.withSheet(ctx, ref, func(sheet *timesheet.Sheet) error {
		if err := sheet.RemoveEntry(in.ID); err != nil {
			return err
		}
		out = newSheetView(sheet)
		return nil
	})
	return out, err
}

func (s *Service) Show(ctx context.Context, in *SheetInput) (*SheetView, error) {
	ref, err := s.resolveSheet(ctx, in)
	if err != nil {
		return nil, err
	}
	var out *SheetView
	err = s.withSheet(ctx, ref, func(sheet *timesheet.Sheet) error {
		out = newSheetView(sheet)
		return nil
	})
	return out, err
}

// CopyPreviousWeek appends the previous week's rows (classification and project) to the sheet.
func (s *Service) CopyPreviousWeek(ctx context.Context, in *SheetInput) (*SheetView, error) {
	ref, err := s.resolveSheet(ctx, in)
	if err != nil {
		return nil, err
	}
	prevRef := ref
	prevRef.week = ref.week.Prev()
	var prev *timesheet.Sheet
	err = s.withSheet(ctx, prevRef, func(sheet *timesheet.Sheet) error {
		snapshot, err := timesheet.FromDraft(sheet.Draft(), s.loc)
		prev = snapshot
		return err
	})
	if err != nil {
		return nil, err
	}
	if prev.Len() == 0 {
		return nil, fmt.Errorf("no entries in week of %s to copy", prevRef.week.Key())
	}
	var out *SheetView
	err = s.withSheet(ctx, ref, func(sheet *timesheet.Sheet) error {
		copied := sheet.CopyFrom(prev)
		out = newSheetView(sheet)
		out.Copied = len(copied)
		return nil
	})
	return out, err
}

// Save persists the working sheet so it survives restarts.
func (s *Service) Save(ctx context.Context, in *SheetInput) (*SaveOutput, error) {
	ref, err := s.resolveSheet(ctx, in)
	if err != nil {
		return nil, err
	}
	var out *SaveOutput
	err = s.withSheet(ctx, ref, func(sheet *timesheet.Sheet) error {
		draft, err := s.store.Save(ctx, ref.namespace, ref.account.Alias, sheet)
		if err != nil {
			return err
		}
		out = &SaveOutput{URL: s.store.URL(ref.namespace, ref.account.Alias, ref.week), Week: draft.Week, Entries: len(draft.Entries), SavedAt: draft.SavedAt}
		return nil
	})
	return out, err
}

// DiscardDraft deletes the saved draft of a week and drops its working sheet,
// so the next call starts from an empty sheet.
func (s *Service) DiscardDraft(ctx context.Context, in *SheetInput) (*DiscardOutput, error) {
	ref, err := s.resolveSheet(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, ref.namespace, ref.account.Alias, ref.week); err != nil {
		return nil, err
	}
	s.drafts.Discard(ref.key())
	return &DiscardOutput{URL: s.store.URL(ref.namespace, ref.account.Alias, ref.week), Week: ref.week.Key()}, nil
}

// Submit creates one list item per entry. Failures are reported per entry and
// the sheet is kept, so a retry may duplicate entries that already succeeded.
func (s *Service) Submit(ctx context.Context, in *SubmitInput) (*SubmitOutput, error) {
	ref, err := s.resolveSheet(ctx, &in.SheetInput)
	if err != nil {
		return nil, err
	}
	var entries []timesheet.Entry
	err = s.withSheet(ctx, ref, func(sheet *timesheet.Sheet) error {
		entries, err = selectEntries(sheet, in.EntryIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &SubmitOutput{Week: ref.week.Key(), Results: make([]SubmitResult, 0, len(entries))}
	for _, e := range entries {
		result := SubmitResult{EntryID: e.ID}
		item, err := s.lists.CreateItem(ctx, &graph.CreateListItemInput{Account: ref.account, Fields: s.fields.Fields(e, ref.week)}, graph.DefaultScopes(), nil)
		if err != nil {
			result.Error = graph.Describe(err)
			out.Failed++
		} else {
			result.ItemID = item.ID
			out.Submitted++
		}
		out.Results = append(out.Results, result)
	}
	if debugEnabled() {
		logf("submit ns=%s alias=%s week=%s submitted=%d failed=%d", ref.namespace, ref.account.Alias, out.Week, out.Submitted, out.Failed)
	}
	return out, nil
}

func selectEntries(sheet *timesheet.Sheet, ids []string) ([]timesheet.Entry, error) {
	if len(ids) == 0 {
		entries := sheet.Entries()
		if len(entries) == 0 {
			return nil, errEmptySheet
		}
		return entries, nil
	}
	entries := make([]timesheet.Entry, 0, len(ids))
	for _, id := range ids {
		e, err := sheet.Entry(id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// calendarWindow defaults the view to the addressed week and the configured time zone.
func (s *Service) calendarWindow(in *CalendarViewInput) error {
	if in.TimeZone == "" {
		in.TimeZone = s.timeZone
	}
	if in.StartISO != "" || in.EndISO != "" {
		return nil
	}
	week, err := s.week(in.Week)
	if err != nil {
		return err
	}
	start, end := week.Bounds()
	in.StartISO, in.EndISO = start.Format(time.RFC3339), end.Format(time.RFC3339)
	return nil
}
