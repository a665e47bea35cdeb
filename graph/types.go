package graph

// Minimal types for tool I/O

type Account struct {
	// Alias identifies a stored account (e.g. "work", "personal").
	Alias    string `json:"alias" description:"account name"`
	TenantID string `json:"-" internal:"true"`
}

// User is the projection of /me the app displays.
type User struct {
	ID                string `json:"id,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
	GivenName         string `json:"givenName,omitempty"`
	Mail              string `json:"mail,omitempty"`
	UserPrincipalName string `json:"userPrincipalName,omitempty"`
	TimeZone          string `json:"timeZone,omitempty"`
}

// Email returns mail, falling back to userPrincipalName for personal accounts.
func (u *User) Email() string {
	if u.Mail != "" {
		return u.Mail
	}
	return u.UserPrincipalName
}

type GetUserInput struct {
	Account Account `json:"account"`
}

type CalendarEvent struct {
	ID        string `json:"id,omitempty"`
	Subject   string `json:"subject"`
	StartISO  string `json:"startISO"`
	EndISO    string `json:"endISO"`
	TimeZone  string `json:"timeZone,omitempty"`
	Location  string `json:"location,omitempty"`
	Organizer string `json:"organizer,omitempty"`
}

type CalendarViewInput struct {
	Account Account `json:"account"`
	// StartISO and EndISO bound the window; both required.
	StartISO string `json:"startISO" description:"window start (ISO 8601)"`
	EndISO   string `json:"endISO" description:"window end (ISO 8601)"`
	// TimeZone is an IANA or Windows zone name used for returned times (default UTC).
	TimeZone string `json:"timeZone,omitempty" description:"time zone for returned event times"`
	// Top caps each page (default and max 50).
	Top int `json:"top,omitempty"`
	// MaxPages follows @odata.nextLink up to this many pages (default 1).
	MaxPages int `json:"maxPages,omitempty" description:"number of result pages to follow (default 1)"`
}

type CalendarViewOutput struct {
	Events []CalendarEvent `json:"events,omitempty"`
	// Truncated is set when more events exist beyond the returned pages.
	Truncated bool   `json:"truncated,omitempty"`
	NextLink  string `json:"nextLink,omitempty"`
}

type CreateEventInput struct {
	Account   Account  `json:"account"`
	Subject   string   `json:"subject"`
	StartISO  string   `json:"startISO"`
	EndISO    string   `json:"endISO"`
	TimeZone  string   `json:"timeZone,omitempty"`
	Location  string   `json:"location,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
	BodyText  string   `json:"bodyText,omitempty"`
}

// ListRef addresses a SharePoint list.
type ListRef struct {
	SiteID string `json:"siteId,omitempty" description:"SharePoint site id (defaults to configured site)"`
	ListID string `json:"listId,omitempty" description:"list id (defaults to configured timesheet list)"`
}

type GetListInput struct {
	Account Account `json:"account"`
	ListRef
}

type List struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	WebURL      string `json:"webUrl,omitempty"`
	Created     string `json:"createdDateTime,omitempty"`
	Modified    string `json:"lastModifiedDateTime,omitempty"`
}

type CreateListItemInput struct {
	Account Account `json:"account"`
	ListRef
	// Fields is sent verbatim as the item's fields.
	Fields map[string]any `json:"fields"`
}

type ListItem struct {
	ID       string         `json:"id"`
	WebURL   string         `json:"webUrl,omitempty"`
	Created  string         `json:"createdDateTime,omitempty"`
	Modified string         `json:"lastModifiedDateTime,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
}

type ListItemsInput struct {
	Account Account `json:"account"`
	ListRef
	Top    int    `json:"top,omitempty"`
	Filter string `json:"filter,omitempty" description:"OData $filter on fields (e.g., fields/EndDate eq '06/23/2023')"`
}

type ListItemsOutput struct {
	Items    []ListItem `json:"items,omitempty"`
	NextLink string     `json:"nextLink,omitempty"`
}
