package timesheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/viant/afs"

	"github.com/viant/mcp-timesheet/auth"
)

// Store persists sheet drafts under an afs base URL, one JSON object per
// namespace, account alias and week: <base>/<namespace>/<alias>/<week>.json.
type Store struct {
	baseURL string
	fs      afs.Service
	loc     *time.Location
}

// NewStore returns a store rooted at baseURL (e.g. mem://localhost/drafts, file:///var/drafts).
func NewStore(baseURL string, loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{baseURL: strings.TrimRight(baseURL, "/"), fs: afs.New(), loc: loc}
}

// URL returns the draft location for namespace, alias and week.
func (s *Store) URL(namespace, alias string, week Week) string {
	return s.baseURL + "/" + auth.PathSegment(namespace) + "/" + auth.PathSegment(alias) + "/" + week.Key() + ".json"
}

// Save writes the sheet for namespace and alias, replacing any previous draft of the week.
func (s *Store) Save(ctx context.Context, namespace, alias string, sheet *Sheet) (*Draft, error) {
	draft := sheet.Draft()
	draft.SavedAt = time.Now().UTC()
	data, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	URL := s.URL(namespace, alias, sheet.Week())
	if err := s.fs.Upload(ctx, URL, 0o600, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("save draft %s: %w", URL, err)
	}
	return draft, nil
}

// Load reads the draft of week for namespace and alias.
func (s *Store) Load(ctx context.Context, namespace, alias string, week Week) (*Sheet, error) {
	URL := s.URL(namespace, alias, week)
	ok, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("check draft %s: %w", URL, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, week.Key())
	}
	rc, err := s.fs.OpenURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("open draft %s: %w", URL, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read draft %s: %w", URL, err)
	}
	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", URL, err)
	}
	return FromDraft(&draft, s.loc)
}

// Delete removes the draft of week for namespace and alias. Missing drafts are not an error.
func (s *Store) Delete(ctx context.Context, namespace, alias string, week Week) error {
	URL := s.URL(namespace, alias, week)
	ok, err := s.fs.Exists(ctx, URL)
	if err != nil || !ok {
		return err
	}
	return s.fs.Delete(ctx, URL)
}
