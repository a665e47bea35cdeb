package mcp

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const deviceLoginURL = "https://microsoft.com/devicelogin"

var (
	promptURLExpr  = regexp.MustCompile(`https?://[^\s]+`)
	promptCodeExpr = regexp.MustCompile(`(?i)code\s+([A-Z0-9-]+)`)
)

// RegisterHTTP mounts the device login and pending login endpoints.
func (s *Service) RegisterHTTP(mux *http.ServeMux) {
	mux.HandleFunc("/timesheet/auth/device/", s.DeviceHandler())
	mux.HandleFunc("/timesheet/auth/pending", s.PendingListHandler())
	mux.HandleFunc("/timesheet/auth/pending/clear", s.PendingClearHandler())
}

// DeviceHandler serves the device code page of a pending login:
// /timesheet/auth/device/{uuid}
func (s *Service) DeviceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 4 {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		pend, ok := s.pending.Get(parts[3])
		if !ok {
			http.Error(w, "no pending sign-in", http.StatusNotFound)
			return
		}
		msg := s.logins.DevicePrompt(pend.Namespace, pend.Alias)
		deadline := time.Now().Add(s.promptWait)
		for msg == "" && time.Now().Before(deadline) {
			select {
			case <-r.Context().Done():
				return
			case <-pend.Done():
				deadline = time.Now()
			case <-time.After(200 * time.Millisecond):
			}
			msg = s.logins.DevicePrompt(pend.Namespace, pend.Alias)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if msg == "" {
			_, _ = fmt.Fprint(w, waitingPage())
			return
		}
		_, _ = fmt.Fprint(w, devicePage(msg))
	}
}

// devicePage renders the Azure device prompt with a clickable link and copyable code.
func devicePage(msg string) string {
	URL := extractURL(msg)
	code := extractCode(msg)
	escURL := html.EscapeString(URL)
	if code == "" {
		return fmt.Sprintf(`<html><body>
<h3>Sign in to Microsoft 365</h3>
<p>Open <a href="%[1]s" target="_blank" rel="noopener noreferrer">%[1]s</a> and follow the instructions.</p>
<pre>%[2]s</pre>
<p>Keep this tab open; return to your assistant after completing sign-in.</p>
</body></html>`, escURL, html.EscapeString(msg))
	}
	escCode := html.EscapeString(code)
	return fmt.Sprintf(`<html><body style="font-family: -apple-system, Segoe UI, Roboto, sans-serif;">
<h3>Sign in to Microsoft 365</h3>
<p>Click to open: <a href="%[1]s" target="_blank" rel="noopener noreferrer">%[1]s</a></p>
<p>Then enter this code:</p>
<p style="font-size: 1.4em; font-weight: 600;"><code>%[2]s</code> <button onclick="navigator.clipboard.writeText('%[2]s')">Copy</button></p>
<p>Your timesheet request continues once sign-in completes.</p>
</body></html>`, escURL, escCode)
}

func waitingPage() string {
	return fmt.Sprintf(`<!doctype html>
<html><head>
<meta http-equiv="refresh" content="2">
<meta charset="utf-8">
<title>Sign in to Microsoft 365</title>
</head><body style="font-family:-apple-system,Segoe UI,Roboto,sans-serif;margin:24px">
<h3>Sign in to Microsoft 365</h3>
<p>Preparing device login, this page refreshes automatically.</p>
<p>If it takes too long, open <a href="%[1]s" target="_blank" rel="noopener noreferrer">%[1]s</a> and follow the instructions.</p>
</body></html>`, html.EscapeString(deviceLoginURL))
}

func extractURL(msg string) string {
	if m := promptURLExpr.FindString(msg); m != "" {
		return m
	}
	return deviceLoginURL
}

func extractCode(msg string) string {
	if m := promptCodeExpr.FindStringSubmatch(msg); len(m) == 2 {
		return m[1]
	}
	return ""
}

// requestNamespace takes the namespace query parameter, falling back to the caller's token.
func (s *Service) requestNamespace(r *http.Request) string {
	if ns := r.URL.Query().Get("namespace"); ns != "" {
		return ns
	}
	ns, _ := s.namespace(r.Context())
	return ns
}

type pendingRow struct {
	UUID      string    `json:"uuid"`
	Alias     string    `json:"alias"`
	TenantID  string    `json:"tenantId,omitempty"`
	Namespace string    `json:"namespace"`
	URL       string    `json:"url"`
	Created   time.Time `json:"created"`
}

// PendingListHandler returns JSON of pending logins for a namespace.
func (s *Service) PendingListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ns := s.requestNamespace(r)
		if ns == "" {
			http.Error(w, "namespace required", http.StatusBadRequest)
			return
		}
		list := s.pending.ListNamespace(ns)
		out := make([]pendingRow, 0, len(list))
		for _, v := range list {
			out = append(out, pendingRow{UUID: v.UUID, Alias: v.Alias, TenantID: v.TenantID, Namespace: v.Namespace, URL: s.deviceURL(v.UUID), Created: v.Created})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

// PendingClearHandler cancels all pending logins for a namespace.
func (s *Service) PendingClearHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ns := s.requestNamespace(r)
		if ns == "" {
			http.Error(w, "namespace required", http.StatusBadRequest)
			return
		}
		cleared := s.pending.ClearNamespace(ns)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"cleared": len(cleared), "uuids": cleared})
	}
}
