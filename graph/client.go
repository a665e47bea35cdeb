package graph

import (
	"context"
	"fmt"
	"log"
	neturl "net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity/cache"
	kiotaazure "github.com/microsoft/kiota-authentication-azure-go"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	oaauth "github.com/viant/mcp-timesheet/auth"
)

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Manager provides Microsoft Graph client instances per account alias.
type Manager struct {
	clientID   string
	storageDir string
	records    *recordStore
	baseURL    string
	auth       *oaauth.Service
	limiter    *RateLimiter
	// pending holds device-code prompts keyed by namespace|alias.
	pendingMu sync.Mutex
	pending   map[string]*pendingAuth
	// clients caches GraphServiceClient instances per alias+tenant+scopes.
	mu      sync.RWMutex
	clients map[string]*msgraphsdk.GraphServiceClient
	// creds caches credentials per namespace+alias, kept in memory until process restarts.
	creds map[string]azcore.TokenCredential
}

// pendingAuth is a running device login; every caller that asked for it is notified.
type pendingAuth struct {
	message string
	onDone  []func(error)
}

func NewManager(clientID, storageDir string) *Manager {
	return &Manager{
		clientID:   clientID,
		storageDir: storageDir,
		records:    newRecordStore(storageDir),
		baseURL:    DefaultBaseURL,
		auth:       oaauth.New(),
		limiter:    NewRateLimiter(DefaultRateLimit),
		pending:    map[string]*pendingAuth{},
		clients:    map[string]*msgraphsdk.GraphServiceClient{},
		creds:      map[string]azcore.TokenCredential{},
	}
}

// SetBaseURL points REST calls at another Graph root (sovereign clouds, tests).
func (m *Manager) SetBaseURL(baseURL string) {
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
		m.baseURL = baseURL
	}
}

// BaseURL returns the Graph root used for REST calls.
func (m *Manager) BaseURL() string { return m.baseURL }

func (m *Manager) namespace(ctx context.Context) string {
	ns, _ := m.auth.Namespace(ctx)
	if ns == "" {
		ns = "default"
	}
	return ns
}

// NeedsInteractive checks quickly (non-interactive) whether a device flow is required.
func (m *Manager) NeedsInteractive(ctx context.Context, alias, tenantID string, scopes []string) bool {
	ns := m.namespace(ctx)
	m.mu.RLock()
	cached := m.creds[ns+"|"+alias]
	m.mu.RUnlock()
	if cached != nil {
		return false
	}
	// Without a saved record a silent token is impossible.
	if !m.HasAuthRecord(ctx, alias) {
		return true
	}
	opts, err := m.credentialOptions(ctx, ns, alias, tenantID, nil)
	if err != nil {
		return true
	}
	cred, err := azidentity.NewDeviceCodeCredential(opts)
	if err != nil {
		return true
	}
	ctx2, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_, err = cred.GetToken(ctx2, policy.TokenRequestOptions{Scopes: scopes})
	return err != nil
}

// Client returns a ready-to-use GraphServiceClient with given scopes.
func (m *Manager) Client(ctx context.Context, alias, tenantID string, scopes []string, prompt func(string)) (*msgraphsdk.GraphServiceClient, error) {
	ns := m.namespace(ctx)
	key := m.clientKey(ns, alias, tenantID, scopes)
	m.mu.RLock()
	if cli, ok := m.clients[key]; ok {
		m.mu.RUnlock()
		return cli, nil
	}
	m.mu.RUnlock()

	cred, err := m.Credential(ctx, alias, tenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	client, err := m.newClient(cred, scopes)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	// Double-check in case another goroutine created it meanwhile.
	if existing, ok := m.clients[key]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.clients[key] = client
	m.mu.Unlock()
	return client, nil
}

// newClient builds an SDK client bound to the manager's base URL.
func (m *Manager) newClient(cred azcore.TokenCredential, scopes []string) (*msgraphsdk.GraphServiceClient, error) {
	if m.baseURL == DefaultBaseURL {
		return msgraphsdk.NewGraphServiceClientWithCredentials(cred, scopes)
	}
	u, err := neturl.Parse(m.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid graph base URL %q: %w", m.baseURL, err)
	}
	provider, err := kiotaazure.NewAzureIdentityAuthenticationProviderWithScopesAndValidHosts(cred, scopes, []string{u.Hostname()})
	if err != nil {
		return nil, err
	}
	adapter, err := msgraphsdk.NewGraphRequestAdapter(provider)
	if err != nil {
		return nil, err
	}
	adapter.SetBaseUrl(m.baseURL)
	return msgraphsdk.NewGraphServiceClient(adapter), nil
}

// HasAuthRecord reports whether an auth record exists for alias.
func (m *Manager) HasAuthRecord(ctx context.Context, alias string) bool {
	return m.records.Exists(ctx, m.namespace(ctx), alias)
}

// StartDeviceLogin launches the device code authentication in background.
// It stores the prompt message to be retrievable via DevicePrompt and reports
// the outcome to onDone. A call made while a login for the same alias runs
// joins it: onDone is reported when that login ends. ctx must outlive the login.
func (m *Manager) StartDeviceLogin(ctx context.Context, alias, tenantID string, scopes []string, onDone func(error)) {
	key := m.namespace(ctx) + "|" + alias
	m.pendingMu.Lock()
	if holder, ok := m.pending[key]; ok {
		if onDone != nil {
			holder.onDone = append(holder.onDone, onDone)
		}
		m.pendingMu.Unlock()
		return
	}
	holder := &pendingAuth{}
	if onDone != nil {
		holder.onDone = append(holder.onDone, onDone)
	}
	m.pending[key] = holder
	m.pendingMu.Unlock()
	go func() {
		prompt := func(msg string) {
			m.pendingMu.Lock()
			holder.message = msg
			m.pendingMu.Unlock()
		}
		_, err := m.Credential(ctx, alias, tenantID, scopes, prompt)
		if err != nil && debugEnabled() {
			log.Printf("[timesheet] device login failed; alias=%s err=%v", alias, err)
		}
		m.finishDeviceLogin(key, err)
	}()
}

// finishDeviceLogin drops the login under key and reports err to everyone who joined it.
func (m *Manager) finishDeviceLogin(key string, err error) {
	m.pendingMu.Lock()
	var callbacks []func(error)
	if holder, ok := m.pending[key]; ok {
		callbacks = holder.onDone
		delete(m.pending, key)
	}
	m.pendingMu.Unlock()
	for _, fn := range callbacks {
		fn(err)
	}
}

func (m *Manager) credentialOptions(ctx context.Context, ns, alias, tenantID string, prompt func(string)) (*azidentity.DeviceCodeCredentialOptions, error) {
	rec, haveRec := m.records.Load(ctx, ns, alias)
	// Persist tokens via azidentity/cache (Keychain on macOS).
	aCache, err := cache.New(&cache.Options{Name: "mcp-timesheet-" + oaauth.PathSegment(ns) + "-" + oaauth.PathSegment(alias)})
	if err != nil {
		return nil, err
	}
	// Always provide a prompt callback so the SDK never prints to stdout.
	userPrompt := func(_ context.Context, msg azidentity.DeviceCodeMessage) error {
		if prompt != nil {
			prompt(msg.Message)
		}
		return nil
	}
	opts := &azidentity.DeviceCodeCredentialOptions{
		TenantID:   tenantID,
		ClientID:   m.clientID,
		Cache:      aCache,
		UserPrompt: userPrompt,
	}
	if haveRec {
		opts.AuthenticationRecord = rec
	}
	return opts, nil
}

// acquireCredential performs Device Code flow. If an auth record exists, use it for silent login.
func (m *Manager) acquireCredential(ctx context.Context, alias, tenantID string, scopes []string, prompt func(string)) (*azidentity.DeviceCodeCredential, azidentity.AuthenticationRecord, error) {
	if err := m.records.check(); err != nil {
		return nil, azidentity.AuthenticationRecord{}, err
	}
	ns := m.namespace(ctx)
	opts, err := m.credentialOptions(ctx, ns, alias, tenantID, prompt)
	if err != nil {
		return nil, azidentity.AuthenticationRecord{}, err
	}
	cred, err := azidentity.NewDeviceCodeCredential(opts)
	if err != nil {
		return nil, azidentity.AuthenticationRecord{}, err
	}
	rec := opts.AuthenticationRecord
	if rec.HomeAccountID != "" {
		// Quick silent preflight; on failure fall back to the interactive flow.
		tctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		_, preErr := cred.GetToken(tctx, policy.TokenRequestOptions{Scopes: scopes})
		cancel()
		if preErr == nil {
			return cred, rec, nil
		}
	}
	rec, err = cred.Authenticate(ctx, &policy.TokenRequestOptions{Scopes: scopes})
	if err != nil {
		return nil, azidentity.AuthenticationRecord{}, err
	}
	if err := m.records.Save(ctx, ns, alias, rec); err != nil {
		// the credential is usable; only the next process start prompts again
		log.Printf("[timesheet] failed to save auth record; ns=%s alias=%s err=%v", ns, alias, err)
	} else if debugEnabled() {
		log.Printf("[timesheet] saved auth record; ns=%s alias=%s url=%s", ns, alias, m.records.URL(ns, alias))
	}
	return cred, rec, nil
}

func debugEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("TIMESHEET_MCP_DEBUG")))
	return v != "" && v != "0" && v != "false"
}

// DevicePrompt returns the last device-code prompt message for alias.
func (m *Manager) DevicePrompt(namespace, alias string) string {
	if namespace == "" {
		namespace = "default"
	}
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	if p, ok := m.pending[namespace+"|"+alias]; ok {
		return p.message
	}
	return ""
}

// DefaultScopes requests every permission granted to the app registration.
func DefaultScopes() []string {
	return []string{
		"https://graph.microsoft.com/.default",
	}
}

// AppScopes lists the delegated permissions the app registration must grant.
var AppScopes = []string{
	"openid",
	"offline_access",
	"profile",
	"User.Read",
	"MailboxSettings.Read",
	"Calendars.ReadWrite",
	"Sites.ReadWrite.All",
	"Sites.Read.All",
}

// clientKey builds a stable cache key from alias, tenantID, and normalized scopes.
func (m *Manager) clientKey(ns, alias, tenantID string, scopes []string) string {
	if len(scopes) > 0 {
		norm := make([]string, 0, len(scopes))
		for _, s := range scopes {
			if s == "" {
				continue
			}
			norm = append(norm, strings.ToLower(s))
		}
		sort.Strings(norm)
		scopes = norm
	}
	if ns == "" {
		ns = "default"
	}
	return ns + "|" + alias + "|" + tenantID + "|" + strings.Join(scopes, ",")
}

// Credential returns a cached credential for alias, acquiring and caching if needed.
func (m *Manager) Credential(ctx context.Context, alias, tenantID string, scopes []string, prompt func(string)) (azcore.TokenCredential, error) {
	key := m.namespace(ctx) + "|" + alias
	m.mu.RLock()
	if c := m.creds[key]; c != nil {
		m.mu.RUnlock()
		return c, nil
	}
	m.mu.RUnlock()
	cred, _, err := m.acquireCredential(ctx, alias, tenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	if existing := m.creds[key]; existing != nil {
		m.mu.Unlock()
		return existing, nil
	}
	m.creds[key] = cred
	m.mu.Unlock()
	return cred, nil
}
