package mcp

import (
	"github.com/viant/mcp-timesheet/timesheet"
	"github.com/viant/scy"
)

// Config controls timesheet MCP server behaviour and authentication.
type Config struct {
	// Azure AD application (client) ID for Microsoft Graph.
	ClientID string `json:"clientID"`
	// Tenant ID or "organizations"/"common".
	TenantID string `json:"tenantID"`

	// StorageDir is where auth records/caches are persisted per account alias.
	StorageDir string `json:"storageDir,omitempty"`

	// CallbackBaseURL is used to generate absolute URLs for device login pages.
	// Example: http://localhost:7789
	CallbackBaseURL string `json:"callbackBaseURL,omitempty"`

	// If true, return tool results in the `data` field instead of `text`.
	UseData bool `json:"useData,omitempty"`

	// DraftsBase is the afs URL under which saved timesheets are kept
	// (mem://localhost/mcp-timesheet, file:///var/lib/timesheet, gs://bucket/drafts).
	DraftsBase string `json:"draftsBase,omitempty"`

	// SiteID and ListID address the SharePoint list receiving submitted entries.
	SiteID string `json:"siteID,omitempty"`
	ListID string `json:"listID,omitempty"`

	// Fields overrides SharePoint column names; blank entries keep defaults.
	Fields timesheet.FieldMap `json:"fields,omitempty"`

	// TimeZone is the IANA zone used to resolve weeks and calendar times (default UTC).
	TimeZone string `json:"timeZone,omitempty"`

	// LoginWaitSec bounds how long a tool call waits for a device login it started (default 120).
	LoginWaitSec int `json:"loginWaitSec,omitempty"`

	// AzureRef optionally points to an Azure OAuth2 client config stored as a scy resource.
	// It uses EncodedResource syntax: "<URL>|<kmsKey>", where the key part is optional.
	// Examples:
	//  - file-based:    "~/.secret/azure.yaml|blowfish://default"
	//  - GCP secret:    "gcp://secretmanager/projects/myproj/secrets/azure-cred|blowfish://default"
	// The referenced content should unmarshal into github.com/viant/scy/cred.Azure.
	AzureRef scy.EncodedResource `json:"azureRef,omitempty"`
}
