package graph

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"strconv"

	models "github.com/microsoftgraph/msgraph-sdk-go/models"
)

// MaxCalendarPage is the largest page the calendar view requests.
const MaxCalendarPage = 50

// calendarSelect is the fixed event projection of the calendar view.
const calendarSelect = "subject,organizer,start,end"

type CalendarService struct{ m *Manager }

func NewCalendarService(m *Manager) *CalendarService { return &CalendarService{m: m} }

type eventPayload struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Start   struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
	} `json:"end"`
	Location struct {
		DisplayName string `json:"displayName"`
	} `json:"location"`
	Organizer struct {
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"organizer"`
}

type calendarViewPage struct {
	Value    []eventPayload `json:"value"`
	NextLink string         `json:"@odata.nextLink"`
}

// View lists events in [StartISO, EndISO) ordered by start time. Only the first
// page (at most 50 events) is read unless MaxPages asks for more; Truncated
// reports whether Graph had further results.
func (s *CalendarService) View(ctx context.Context, in *CalendarViewInput, scopes []string, prompt func(string)) (*CalendarViewOutput, error) {
	if in.StartISO == "" || in.EndISO == "" {
		return nil, errors.New("calendar view: startISO and endISO are required")
	}
	top, maxPages := in.Top, in.MaxPages
	if top <= 0 || top > MaxCalendarPage {
		top = MaxCalendarPage
	}
	if maxPages <= 0 {
		maxPages = 1
	}
	tz := in.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	q := neturl.Values{}
	q.Set("startDateTime", in.StartISO)
	q.Set("endDateTime", in.EndISO)
	q.Set("$select", calendarSelect)
	q.Set("$orderby", "start/dateTime")
	q.Set("$top", strconv.Itoa(top))
	req := &restRequest{
		account: in.Account,
		path:    "me/calendarview",
		query:   q,
		headers: map[string]string{"Prefer": fmt.Sprintf(`outlook.timezone="%s"`, tz)},
		scopes:  scopes,
		prompt:  prompt,
	}
	out := &CalendarViewOutput{}
	for page := 0; page < maxPages; page++ {
		var payload calendarViewPage
		if err := s.m.get(ctx, req, &payload); err != nil {
			return nil, fmt.Errorf("calendar view: %w", err)
		}
		for _, ev := range payload.Value {
			out.Events = append(out.Events, CalendarEvent{
				ID:        ev.ID,
				Subject:   ev.Subject,
				StartISO:  ev.Start.DateTime,
				EndISO:    ev.End.DateTime,
				TimeZone:  ev.Start.TimeZone,
				Location:  ev.Location.DisplayName,
				Organizer: organizerName(ev.Organizer.EmailAddress.Name, ev.Organizer.EmailAddress.Address),
			})
		}
		out.NextLink = payload.NextLink
		if payload.NextLink == "" {
			break
		}
		req.path = payload.NextLink
	}
	out.Truncated = out.NextLink != ""
	return out, nil
}

func organizerName(name, address string) string {
	if name != "" {
		return name
	}
	return address
}

// Create posts a new event to the signed-in user's default calendar.
func (s *CalendarService) Create(ctx context.Context, in *CreateEventInput, scopes []string, prompt func(string)) (*CalendarEvent, error) {
	client, err := s.m.Client(ctx, in.Account.Alias, in.Account.TenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	ev := models.NewEvent()
	ev.SetSubject(ptr(in.Subject))
	tz := in.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	start := models.NewDateTimeTimeZone()
	start.SetDateTime(ptr(in.StartISO))
	start.SetTimeZone(ptr(tz))
	end := models.NewDateTimeTimeZone()
	end.SetDateTime(ptr(in.EndISO))
	end.SetTimeZone(ptr(tz))
	ev.SetStart(start)
	ev.SetEnd(end)
	if in.Location != "" {
		loc := models.NewLocation()
		loc.SetDisplayName(ptr(in.Location))
		ev.SetLocation(loc)
	}
	if len(in.Attendees) > 0 {
		var attendees []models.Attendeeable
		for _, a := range in.Attendees {
			email := models.NewEmailAddress()
			email.SetAddress(ptr(a))
			att := models.NewAttendee()
			att.SetEmailAddress(email)
			attendees = append(attendees, att)
		}
		ev.SetAttendees(attendees)
	}
	if in.BodyText != "" {
		body := models.NewItemBody()
		body.SetContentType(ptr(models.TEXT_BODYTYPE))
		body.SetContent(ptr(in.BodyText))
		ev.SetBody(body)
	}
	created, err := client.Me().Events().Post(ctx, ev, nil)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &CalendarEvent{
		ID:        ptrVal(created.GetId()),
		Subject:   ptrVal(created.GetSubject()),
		StartISO:  dateTimeToISO(created.GetStart()),
		EndISO:    dateTimeToISO(created.GetEnd()),
		TimeZone:  timeZoneOf(created.GetStart()),
		Location:  locationName(created.GetLocation()),
		Organizer: organizerAddress(created.GetOrganizer()),
	}, nil
}

func dateTimeToISO(dt models.DateTimeTimeZoneable) string {
	if dt == nil {
		return ""
	}
	return ptrVal(dt.GetDateTime())
}

func timeZoneOf(dt models.DateTimeTimeZoneable) string {
	if dt == nil {
		return ""
	}
	return ptrVal(dt.GetTimeZone())
}

func locationName(loc models.Locationable) string {
	if loc == nil {
		return ""
	}
	return ptrVal(loc.GetDisplayName())
}

func organizerAddress(org models.Recipientable) string {
	if org == nil || org.GetEmailAddress() == nil {
		return ""
	}
	return ptrVal(org.GetEmailAddress().GetAddress())
}
