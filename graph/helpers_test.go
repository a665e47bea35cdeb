package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/microsoft/kiota-abstractions-go/authentication"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
)

// staticCredential hands out a fixed bearer token.
type staticCredential struct{ token string }

func (c *staticCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: c.token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

const testAlias = "acc"

// newTestManager returns a manager whose REST and SDK calls for testAlias go to handler.
func newTestManager(t *testing.T, handler http.HandlerFunc) *Manager {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m := NewManager("client", t.TempDir())
	m.SetBaseURL(srv.URL + "/v1.0")
	m.creds["default|"+testAlias] = &staticCredential{token: "test-token"}

	adapter, err := msgraphsdk.NewGraphRequestAdapter(&authentication.AnonymousAuthenticationProvider{})
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	adapter.SetBaseUrl(srv.URL + "/v1.0")
	m.clients[m.clientKey("default", testAlias, "", DefaultScopes())] = msgraphsdk.NewGraphServiceClient(adapter)
	return m
}

// graphPath strips the API root and maps the SDK's /me placeholder back to /me.
func graphPath(r *http.Request) string {
	p := strings.TrimPrefix(r.URL.Path, "/v1.0")
	return strings.Replace(p, "/users/me-token-to-replace", "/me", 1)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
