package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/viant/afs"

	oaauth "github.com/viant/mcp-timesheet/auth"
)

var errNoStorage = errors.New("storageDir is required")

// recordStore keeps azidentity authentication records, one JSON file per
// namespace and alias: <base>/<namespace>/<alias>/auth_record.json. The base may be a local directory or any afs URL.
type recordStore struct {
	base string
	fs   afs.Service
}

func newRecordStore(storageDir string) *recordStore {
	return &recordStore{base: storageBaseURL(storageDir), fs: afs.New()}
}

// storageBaseURL expands env vars and ~, and turns local paths into file:// URLs.
func storageBaseURL(dir string) string {
	dir = strings.TrimSpace(os.ExpandEnv(dir))
	if dir == "" || strings.Contains(dir, "://") {
		return strings.TrimRight(dir, "/")
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir[1:], "/"))
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return "file://" + filepath.ToSlash(dir)
}

func (r *recordStore) URL(ns, alias string) string {
	return r.base + "/" + oaauth.PathSegment(ns) + "/" + oaauth.PathSegment(alias) + "/auth_record.json"
}

func (r *recordStore) check() error {
	if r.base == "" {
		return errNoStorage
	}
	return nil
}

// Exists reports whether a record was saved for ns and alias.
func (r *recordStore) Exists(ctx context.Context, ns, alias string) bool {
	if r.check() != nil {
		return false
	}
	ok, err := r.fs.Exists(ctx, r.URL(ns, alias))
	return err == nil && ok
}

// Load returns the saved record; ok is false when none is usable.
func (r *recordStore) Load(ctx context.Context, ns, alias string) (rec azidentity.AuthenticationRecord, ok bool) {
	if !r.Exists(ctx, ns, alias) {
		return rec, false
	}
	rc, err := r.fs.OpenURL(ctx, r.URL(ns, alias))
	if err != nil {
		return rec, false
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return rec, false
	}
	return rec, json.Unmarshal(data, &rec) == nil
}

func (r *recordStore) Save(ctx context.Context, ns, alias string, rec azidentity.AuthenticationRecord) error {
	if err := r.check(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.fs.Upload(ctx, r.URL(ns, alias), 0o600, bytes.NewReader(data))
}
