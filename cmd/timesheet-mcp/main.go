package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	_ "time/tzdata"

	flags "github.com/jessevdk/go-flags"
	"github.com/viant/mcp-protocol/authorization"
	oauthmeta "github.com/viant/mcp-protocol/oauth2/meta"
	"github.com/viant/mcp-protocol/schema"
	mcpsrv "github.com/viant/mcp/server"
	serverauth "github.com/viant/mcp/server/auth"
	"github.com/viant/scy"
	"github.com/viant/scy/auth/flow"
	"github.com/viant/scy/cred"
	_ "github.com/viant/scy/kms/blowfish"

	"github.com/viant/mcp-timesheet/mcp"
)

// Options defines CLI flags for the timesheet MCP server.
type Options struct {
	HTTPAddr     string `short:"a" long:"addr" default:":7789" description:"HTTP listen address"`
	ClientID     string `long:"client-id" description:"Azure AD application (client) ID"`
	TenantID     string `long:"tenant-id" description:"Tenant ID or 'organizations'"`
	StorageDir   string `long:"storage" description:"directory for auth records and token caches"`
	DraftsBase   string `long:"drafts-base" description:"afs base URL for saved timesheets (e.g., file:///var/lib/timesheet, mem://localhost/mcp-timesheet)"`
	SiteID       string `long:"site-id" description:"SharePoint site id of the timesheet list"`
	ListID       string `long:"list-id" description:"SharePoint list id receiving submitted entries"`
	TimeZone     string `long:"time-zone" description:"IANA time zone for weeks and calendar times (default UTC)"`
	AzureRef     string `long:"azure-ref" description:"scy EncodedResource for Azure cred (e.g., gcp://...|blowfish://default)"`
	Oauth2Config string `short:"o" long:"oauth2config" description:"Path to JSON OAuth2 configuration file (scy EncodedResource)"`
	UseIdToken   bool   `short:"i" long:"use-id-token" description:"Use ID token (instead of access token) for identity scoping"`
}

func main() {
	var opts Options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		os.Exit(2)
	}
	if opts.TenantID == "" {
		opts.TenantID = envOr("TIMESHEET_TENANT_ID", "organizations")
	}
	if opts.ClientID == "" {
		opts.ClientID = envOr("TIMESHEET_CLIENT_ID", "")
	}
	if opts.AzureRef == "" {
		opts.AzureRef = envOr("TIMESHEET_AZURE_REF", "")
	}
	if opts.DraftsBase == "" {
		opts.DraftsBase = envOr("TIMESHEET_DRAFTS_BASE", mcp.DefaultDraftsBase)
	}
	if opts.StorageDir == "" {
		opts.StorageDir = defaultStorageDir()
	}
	if opts.ClientID == "" && opts.AzureRef == "" {
		log.Fatal("missing --client-id/TIMESHEET_CLIENT_ID (or provide --azure-ref / TIMESHEET_AZURE_REF)")
	}

	svc, err := mcp.NewService(&mcp.Config{
		ClientID:        opts.ClientID,
		TenantID:        opts.TenantID,
		StorageDir:      opts.StorageDir,
		CallbackBaseURL: callbackBaseURL(opts.HTTPAddr),
		DraftsBase:      strings.Replace(opts.DraftsBase, "$HOME", os.Getenv("HOME"), 1),
		SiteID:          opts.SiteID,
		ListID:          opts.ListID,
		TimeZone:        opts.TimeZone,
		AzureRef:        scy.EncodedResource(opts.AzureRef),
	})
	if err != nil {
		log.Fatal(err)
	}

	options := []mcpsrv.Option{
		mcpsrv.WithImplementation(schema.Implementation{Name: "mcp-timesheet", Version: "0.1.0"}),
		mcpsrv.WithNewHandler(mcp.NewHandler(svc)),
		mcpsrv.WithEndpointAddress(opts.HTTPAddr),
		mcpsrv.WithRootRedirect(true),
		mcpsrv.WithStreamableURI("/mcp"),
		mcpsrv.WithCustomHTTPHandler("/timesheet/auth/device/", svc.DeviceHandler()),
		mcpsrv.WithCustomHTTPHandler("/timesheet/auth/pending", svc.PendingListHandler()),
		mcpsrv.WithCustomHTTPHandler("/timesheet/auth/pending/clear", svc.PendingClearHandler()),
	}

	// Optional server-level OAuth2; the caller's token then scopes drafts and credentials.
	if v := strings.TrimSpace(opts.Oauth2Config); v != "" {
		res := scy.EncodedResource(v).Decode(context.Background(), cred.Oauth2Config{})
		sec, err := scy.New().Load(context.Background(), res)
		if err != nil {
			log.Fatalf("failed to load oauth2config: %v", err)
		}
		oc, ok := sec.Target.(*cred.Oauth2Config)
		if !ok {
			log.Fatalf("invalid oauth2config secret type")
		}
		authPolicy := &authorization.Policy{
			Global: &authorization.Authorization{
				UseIdToken: opts.UseIdToken,
				ProtectedResourceMetadata: &oauthmeta.ProtectedResourceMetadata{
					AuthorizationServers: []string{oc.Config.Endpoint.AuthURL},
				}},
			ExcludeURI: "/timesheet/auth/",
		}
		bff := &serverauth.BackendForFrontend{Client: &oc.Config, AuthorizationExchangeHeader: flow.AuthorizationExchangeHeader}
		authSvc, err := serverauth.New(&serverauth.Config{Policy: authPolicy, BackendForFrontend: bff})
		if err != nil {
			log.Fatalf("failed to init auth service: %v", err)
		}
		options = append(options,
			mcpsrv.WithAuthorizer(authSvc.Middleware),
			mcpsrv.WithProtectedResourcesHandler(authSvc.ProtectedResourcesHandler),
		)
	}

	server, err := mcpsrv.New(options...)
	if err != nil {
		log.Fatal(err)
	}
	server.UseStreamableHTTP(true)
	log.Printf("[timesheet] listening on %s", opts.HTTPAddr)
	if err := server.HTTP(context.Background(), opts.HTTPAddr).ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

// callbackBaseURL derives the externally visible base URL from the listen address.
func callbackBaseURL(addr string) string {
	if addr == "" {
		return "http://localhost"
	}
	if addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func defaultStorageDir() string {
	dir, _ := os.UserConfigDir()
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "secret", "mcp-timesheet")
}
