package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
)

func TestCalendarView_Request(t *testing.T) {
	var seen *http.Request
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r
		writeJSON(w, http.StatusOK, `{"value":[
			{"id":"1","subject":"Standup","start":{"dateTime":"2023-06-19T09:00:00","timeZone":"Pacific Standard Time"},"end":{"dateTime":"2023-06-19T09:15:00"},"organizer":{"emailAddress":{"name":"Adele Vance","address":"adelev@contoso.com"}}},
			{"id":"2","subject":"Review","start":{"dateTime":"2023-06-20T14:00:00"},"end":{"dateTime":"2023-06-20T15:00:00"},"organizer":{"emailAddress":{"address":"megan@contoso.com"}}}
		]}`)
	})
	svc := NewCalendarService(m)
	out, err := svc.View(context.Background(), &CalendarViewInput{
		Account:  Account{Alias: testAlias},
		StartISO: "2023-06-19T00:00:00",
		EndISO:   "2023-06-24T00:00:00",
		TimeZone: "Pacific Standard Time",
	}, DefaultScopes(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := graphPath(seen); got != "/me/calendarview" {
		t.Fatalf("unexpected path: %s", got)
	}
	q := seen.URL.Query()
	expect := map[string]string{
		"startDateTime": "2023-06-19T00:00:00",
		"endDateTime":   "2023-06-24T00:00:00",
		"$select":       "subject,organizer,start,end",
		"$orderby":      "start/dateTime",
		"$top":          "50",
	}
	for k, v := range expect {
		if got := q.Get(k); got != v {
			t.Fatalf("query %s: got %q want %q", k, got, v)
		}
	}
	if got := seen.Header.Get("Prefer"); got != `outlook.timezone="Pacific Standard Time"` {
		t.Fatalf("unexpected Prefer header: %q", got)
	}
	if got := seen.Header.Get("Authorization"); got != "Bearer test-token" {
		t.Fatalf("unexpected Authorization header: %q", got)
	}
	if len(out.Events) != 2 || out.Truncated {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.Events[0].Organizer != "Adele Vance" || out.Events[1].Organizer != "megan@contoso.com" {
		t.Fatalf("unexpected organizers: %+v", out.Events)
	}
	if out.Events[0].StartISO != "2023-06-19T09:00:00" || out.Events[0].TimeZone != "Pacific Standard Time" {
		t.Fatalf("unexpected start: %+v", out.Events[0])
	}
}

func TestCalendarView_Truncation(t *testing.T) {
	var srvURL string
	calls := 0
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("page") == "2" {
			writeJSON(w, http.StatusOK, `{"value":[{"id":"b","subject":"second"}]}`)
			return
		}
		writeJSON(w, http.StatusOK, fmt.Sprintf(`{"value":[{"id":"a","subject":"first"}],"@odata.nextLink":"%s/v1.0/me/calendarview?page=2"}`, srvURL))
	})
	srvURL = m.BaseURL()[:len(m.BaseURL())-len("/v1.0")]
	svc := NewCalendarService(m)

	in := &CalendarViewInput{Account: Account{Alias: testAlias}, StartISO: "s", EndISO: "e"}
	out, err := svc.View(context.Background(), in, DefaultScopes(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 || len(out.Events) != 1 || !out.Truncated || out.NextLink == "" {
		t.Fatalf("expected single truncated page, calls=%d out=%+v", calls, out)
	}
	if in.Top != 0 || in.MaxPages != 0 {
		t.Fatalf("input must not be modified, got top=%d maxPages=%d", in.Top, in.MaxPages)
	}

	in = &CalendarViewInput{Account: Account{Alias: testAlias}, StartISO: "s", EndISO: "e", MaxPages: 3}
	out, err = svc.View(context.Background(), in, DefaultScopes(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Events) != 2 || out.Truncated || out.Events[1].ID != "b" {
		t.Fatalf("expected both pages, got %+v", out)
	}
}

func TestCalendarView_RequiresWindow(t *testing.T) {
	svc := NewCalendarService(NewManager("", ""))
	if _, err := svc.View(context.Background(), &CalendarViewInput{StartISO: "x"}, nil, nil); err == nil {
		t.Fatalf("expected error for missing endISO")
	}
}

func TestCalendarView_Unauthorised(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"error":{"code":"InvalidAuthenticationToken","message":"Access token has expired."}}`)
	})
	_, err := NewCalendarService(m).View(context.Background(), &CalendarViewInput{Account: Account{Alias: testAlias}, StartISO: "s", EndISO: "e"}, DefaultScopes(), nil)
	if !errors.Is(err, ErrUnauthorised) {
		t.Fatalf("expected ErrUnauthorised, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != "InvalidAuthenticationToken" {
		t.Fatalf("expected decoded status error, got %v", err)
	}
}

func TestCalendarCreate(t *testing.T) {
	var body map[string]any
	var method, path string
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, graphPath(r)
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		writeJSON(w, http.StatusCreated, `{"id":"ev-1","subject":"Timesheet review","start":{"dateTime":"2023-06-23T16:00:00.0000000","timeZone":"UTC"},"end":{"dateTime":"2023-06-23T16:30:00.0000000","timeZone":"UTC"},"location":{"displayName":"Room 1"},"organizer":{"emailAddress":{"address":"adelev@contoso.com"}}}`)
	})
	out, err := NewCalendarService(m).Create(context.Background(), &CreateEventInput{
		Account:   Account{Alias: testAlias},
		Subject:   "Timesheet review",
		StartISO:  "2023-06-23T16:00:00",
		EndISO:    "2023-06-23T16:30:00",
		Location:  "Room 1",
		Attendees: []string{"megan@contoso.com"},
	}, DefaultScopes(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != http.MethodPost || path != "/me/events" {
		t.Fatalf("unexpected request: %s %s", method, path)
	}
	if body["subject"] != "Timesheet review" {
		t.Fatalf("unexpected body: %v", body)
	}
	if start, _ := body["start"].(map[string]any); start["timeZone"] != "UTC" {
		t.Fatalf("expected default UTC time zone, got %v", body["start"])
	}
	if out.ID != "ev-1" || out.Location != "Room 1" || out.Organizer != "adelev@contoso.com" {
		t.Fatalf("unexpected event: %+v", out)
	}
}
