package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// restRequest is one GET against the Graph REST API.
type restRequest struct {
	account Account
	// path is relative to the base URL, or an absolute @odata.nextLink.
	path    string
	query   neturl.Values
	headers map[string]string
	scopes  []string
	prompt  func(string)
}

// get performs a rate-limited GET and decodes the JSON body into out.
func (m *Manager) get(ctx context.Context, r *restRequest, out any) error {
	cred, err := m.Credential(ctx, r.account.Alias, r.account.TenantID, r.scopes, r.prompt)
	if err != nil {
		return err
	}
	tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: r.scopes})
	if err != nil {
		return err
	}
	URL := r.path
	if !strings.HasPrefix(URL, "http://") && !strings.HasPrefix(URL, "https://") {
		URL = m.baseURL + "/" + strings.TrimLeft(URL, "/")
		if enc := r.query.Encode(); enc != "" {
			URL += "?" + enc
		}
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, URL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	req.Header.Set("Accept", "application/json")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if debugEnabled() {
		log.Printf("[timesheet] GET %s", URL)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		statusErr := newStatusError(resp.StatusCode, body)
		if resp.StatusCode == http.StatusTooManyRequests {
			statusErr.RetryAfter, _ = strconv.Atoi(resp.Header.Get("Retry-After"))
			m.limiter.RecordRateLimitError(statusErr.RetryAfter)
		}
		return statusErr
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
