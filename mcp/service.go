package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/viant/mcp-timesheet/auth"
	"github.com/viant/mcp-timesheet/graph"
	"github.com/viant/mcp-timesheet/timesheet"
	"github.com/viant/scy"
	"github.com/viant/scy/cred"
)

// DefaultDraftsBase keeps saved timesheets in process memory.
const DefaultDraftsBase = "mem://localhost/mcp-timesheet"

const defaultLoginWait = 2 * time.Minute

var errLoginCleared = errors.New("device login cancelled")

// listAPI is the part of graph.ListService the tools use.
type listAPI interface {
	Get(ctx context.Context, in *graph.GetListInput, scopes []string, prompt func(string)) (*graph.List, error)
	CreateItem(ctx context.Context, in *graph.CreateListItemInput, scopes []string, prompt func(string)) (*graph.ListItem, error)
	Items(ctx context.Context, in *graph.ListItemsInput, scopes []string, prompt func(string)) (*graph.ListItemsOutput, error)
}

// deviceLogins runs out-of-band device code logins; *graph.Manager implements it.
type deviceLogins interface {
	NeedsInteractive(ctx context.Context, alias, tenantID string, scopes []string) bool
	StartDeviceLogin(ctx context.Context, alias, tenantID string, scopes []string, onDone func(error))
	DevicePrompt(namespace, alias string) string
}

// Service wires the Graph manager, caller namespaces and timesheet drafts.
type Service struct {
	logins     deviceLogins
	users      *graph.UserService
	calendar   *graph.CalendarService
	lists      listAPI
	fields     timesheet.FieldMap
	store      *timesheet.Store
	drafts     *Drafts
	pending    *PendingAuths
	auth       *auth.Service
	loc        *time.Location
	timeZone   string
	baseURL    string
	useText    bool
	tenantID   string
	clientID   string
	loginWait  time.Duration
	// promptWait bounds how long the device page waits for Azure's prompt.
	promptWait time.Duration
	now        func() time.Time
}

func NewService(cfg *Config) (*Service, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	// Optionally resolve Azure OAuth2 client from scy EncodedResource.
	var az *cred.Azure
	if cfg.AzureRef != "" {
		res := cfg.AzureRef.Decode(context.Background(), cred.Azure{})
		sec, err := scy.New().Load(context.Background(), res)
		if err != nil {
			return nil, fmt.Errorf("load azure ref: %w", err)
		}
		if v, ok := sec.Target.(*cred.Azure); ok {
			az = v
		}
	}
	clientID := cfg.ClientID
	tenantID := cfg.TenantID
	if az != nil {
		if az.ClientID != "" {
			clientID = az.ClientID
		}
		if az.TenantID != "" {
			tenantID = az.TenantID
		}
	}
	loc := time.UTC
	if cfg.TimeZone != "" {
		l, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("invalid time zone %q: %w", cfg.TimeZone, err)
		}
		loc = l
	}
	draftsBase := cfg.DraftsBase
	if draftsBase == "" {
		draftsBase = DefaultDraftsBase
	}
	loginWait := defaultLoginWait
	if cfg.LoginWaitSec > 0 {
		loginWait = time.Duration(cfg.LoginWaitSec) * time.Second
	}
	mgr := graph.NewManager(clientID, cfg.StorageDir)
	return &Service{
		logins:     mgr,
		users:      graph.NewUserService(mgr),
		calendar:   graph.NewCalendarService(mgr),
		lists:      graph.NewListService(mgr, graph.ListRef{SiteID: cfg.SiteID, ListID: cfg.ListID}),
		fields:     cfg.Fields.WithDefaults(),
		store:      timesheet.NewStore(draftsBase, loc),
		drafts:     NewDrafts(),
		pending:    NewPendingAuths(),
		auth:       auth.New(),
		loc:        loc,
		timeZone:   cfg.TimeZone,
		baseURL:    cfg.CallbackBaseURL,
		useText:    !cfg.UseData,
		tenantID:   tenantID,
		clientID:   clientID,
		loginWait:  loginWait,
		promptWait: 8 * time.Second,
		now:        time.Now,
	}, nil
}

func (s *Service) UseTextField() bool { return s.useText }

func (s *Service) namespace(ctx context.Context) (string, error) {
	ns, err := s.auth.Namespace(ctx)
	if err != nil {
		return "", err
	}
	if ns == "" {
		ns = auth.DefaultNamespace
	}
	return ns, nil
}

// account validates the alias and applies the configured tenant.
func (s *Service) account(a *graph.Account) error {
	a.Alias = strings.TrimSpace(a.Alias)
	if a.Alias == "" {
		return errors.New("account.alias is required")
	}
	if a.TenantID == "" {
		a.TenantID = s.tenantID
	}
	return nil
}

// deviceURL is the page showing the device code of a pending login.
func (s *Service) deviceURL(uuid string) string {
	return strings.TrimRight(s.baseURL, "/") + "/timesheet/auth/device/" + uuid
}

// beginLogin starts a device login for the caller unless one is running.
func (s *Service) beginLogin(ctx context.Context, ns string, account graph.Account) *PendingAuth {
	pend, created := s.pending.Begin(ns, account.Alias, account.TenantID)
	if !created {
		return pend
	}
	if debugEnabled() {
		logf("device login started ns=%s alias=%s uuid=%s", ns, account.Alias, pend.UUID)
	}
	// The login outlives the tool call that triggered it. When a cleared login
	// is still running, the new entry joins it and completes with it.
	s.logins.StartDeviceLogin(context.WithoutCancel(ctx), account.Alias, account.TenantID, graph.DefaultScopes(), func(err error) {
		s.pending.Complete(pend.UUID, err)
	})
	return pend
}

// waitLogin blocks until pend completes, ctx ends or the login wait elapses.
func (s *Service) waitLogin(ctx context.Context, pend *PendingAuth) error {
	timer := time.NewTimer(s.loginWait)
	defer timer.Stop()
	select {
	case <-pend.Done():
		return pend.Err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("sign-in for %q not completed; open %s and retry", pend.Alias, s.deviceURL(pend.UUID))
	}
}

// signIn makes sure account has a usable credential before a Graph call.
// When a device login is needed, notify hands the device page URL to the
// client and the call waits for the login; a nil notify fails fast with the
// URL while the login keeps running.
func (s *Service) signIn(ctx context.Context, account graph.Account, notify func(URL string)) error {
	if !s.logins.NeedsInteractive(ctx, account.Alias, account.TenantID, graph.DefaultScopes()) {
		return nil
	}
	ns, err := s.namespace(ctx)
	if err != nil {
		return err
	}
	pend := s.beginLogin(ctx, ns, account)
	URL := s.deviceURL(pend.UUID)
	if notify == nil {
		return fmt.Errorf("sign-in required for %q: open %s", account.Alias, URL)
	}
	notify(URL)
	return s.waitLogin(ctx, pend)
}

func logf(format string, args ...any) { log.Printf("[timesheet] "+format, args...) }

func debugEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("TIMESHEET_MCP_DEBUG")))
	return v != "" && v != "0" && v != "false"
}
