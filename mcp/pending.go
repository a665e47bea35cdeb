package mcp

import (
	"sync"
	"time"
)

// PendingAuth is a device login started on behalf of a tool call.
type PendingAuth struct {
	UUID      string
	Alias     string
	TenantID  string
	Namespace string
	Created   time.Time
	// Err is the login outcome, valid once Done is closed.
	Err  error
	done chan struct{}
}

// Done is closed when the login finishes or is cleared.
func (p *PendingAuth) Done() <-chan struct{} { return p.done }

type PendingAuths struct {
	mu      sync.RWMutex
	byID    map[string]*PendingAuth
	byNS    map[string]map[string]*PendingAuth // ns -> uuid -> pending
	byAlias map[string]*PendingAuth            // ns|alias -> pending
}

func NewPendingAuths() *PendingAuths {
	return &PendingAuths{
		byID:    map[string]*PendingAuth{},
		byNS:    map[string]map[string]*PendingAuth{},
		byAlias: map[string]*PendingAuth{},
	}
}

// Begin returns the pending login of namespace and alias, registering a new
// one when none exists; created reports which.
func (p *PendingAuths) Begin(namespace, alias, tenantID string) (pend *PendingAuth, created bool) {
	if namespace == "" {
		namespace = "default"
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if x, ok := p.byAlias[namespace+"|"+alias]; ok {
		return x, false
	}
	x := &PendingAuth{
		UUID:      newUUID(),
		Alias:     alias,
		TenantID:  tenantID,
		Namespace: namespace,
		Created:   time.Now(),
		done:      make(chan struct{}),
	}
	p.byID[x.UUID] = x
	m, ok := p.byNS[namespace]
	if !ok {
		m = map[string]*PendingAuth{}
		p.byNS[namespace] = m
	}
	m[x.UUID] = x
	p.byAlias[namespace+"|"+alias] = x
	return x, true
}

func (p *PendingAuths) Get(uuid string) (*PendingAuth, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	x, ok := p.byID[uuid]
	return x, ok
}

// Complete removes the pending login and releases its waiters with err.
func (p *PendingAuths) Complete(uuid string, err error) {
	p.mu.Lock()
	x, ok := p.byID[uuid]
	if ok {
		p.remove(x)
		x.Err = err
	}
	p.mu.Unlock()
	if ok {
		close(x.done)
	}
}

// ListNamespace returns a snapshot of pending auths for a namespace.
func (p *PendingAuths) ListNamespace(ns string) []*PendingAuth {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m := p.byNS[ns]
	out := make([]*PendingAuth, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// ClearNamespace removes all pending auths for a namespace and returns cleared UUIDs.
func (p *PendingAuths) ClearNamespace(ns string) []string {
	p.mu.Lock()
	var cleared []*PendingAuth
	for _, x := range p.byNS[ns] {
		cleared = append(cleared, x)
	}
	ids := make([]string, 0, len(cleared))
	for _, x := range cleared {
		p.remove(x)
		x.Err = errLoginCleared
		ids = append(ids, x.UUID)
	}
	p.mu.Unlock()
	for _, x := range cleared {
		close(x.done)
	}
	return ids
}

// remove must be called with mu held.
func (p *PendingAuths) remove(x *PendingAuth) {
	delete(p.byID, x.UUID)
	delete(p.byAlias, x.Namespace+"|"+x.Alias)
	if m, ok := p.byNS[x.Namespace]; ok {
		delete(m, x.UUID)
		if len(m) == 0 {
			delete(p.byNS, x.Namespace)
		}
	}
}
