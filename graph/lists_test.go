package graph

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
)

func TestListCreateItem(t *testing.T) {
	var body map[string]any
	var path string
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		path = graphPath(r)
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		writeJSON(w, http.StatusCreated, `{"id":"17","webUrl":"https://contoso.sharepoint.com/lists/ts/17"}`)
	})
	svc := NewListService(m, ListRef{})
	item, err := svc.CreateItem(context.Background(), &CreateListItemInput{
		Account: Account{Alias: testAlias},
		Fields:  map[string]any{"_x0044_ay1": "8", "EndDate": "06/20/2023"},
	}, DefaultScopes(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "/sites/" + DefaultSiteID + "/lists/" + DefaultListID + "/items"; path != want {
		t.Fatalf("unexpected path: %s want %s", path, want)
	}
	fields, _ := body["fields"].(map[string]any)
	if fields["_x0044_ay1"] != "8" || fields["EndDate"] != "06/20/2023" {
		t.Fatalf("fields not sent verbatim: %v", body)
	}
	if item.ID != "17" || item.Fields["EndDate"] != "06/20/2023" {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestListCreateItem_RequiresFields(t *testing.T) {
	svc := NewListService(NewManager("", ""), ListRef{})
	if _, err := svc.CreateItem(context.Background(), &CreateListItemInput{}, nil, nil); err == nil {
		t.Fatalf("expected error for empty fields")
	}
}

func TestListGet(t *testing.T) {
	var path string
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		path = graphPath(r)
		writeJSON(w, http.StatusOK, `{"id":"list-9","name":"TimeSheet","displayName":"Time Sheet","webUrl":"https://contoso.sharepoint.com/Lists/TimeSheet"}`)
	})
	svc := NewListService(m, ListRef{SiteID: "site-1", ListID: "list-1"})
	list, err := svc.Get(context.Background(), &GetListInput{Account: Account{Alias: testAlias}, ListRef: ListRef{ListID: "list-9"}}, DefaultScopes(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/sites/site-1/lists/list-9" {
		t.Fatalf("unexpected path: %s", path)
	}
	if list.ID != "list-9" || list.DisplayName != "Time Sheet" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestListItems(t *testing.T) {
	var seen *http.Request
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r
		writeJSON(w, http.StatusOK, `{"value":[{"id":"1","fields":{"Project":"atlas","_x0044_ay1":"8"}}]}`)
	})
	svc := NewListService(m, ListRef{SiteID: "site-1", ListID: "list-1"})
	out, err := svc.Items(context.Background(), &ListItemsInput{Account: Account{Alias: testAlias}, Filter: "fields/Project eq 'atlas'"}, DefaultScopes(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := graphPath(seen); got != "/sites/site-1/lists/list-1/items" {
		t.Fatalf("unexpected path: %s", got)
	}
	if seen.URL.Query().Get("$expand") != "fields" || seen.URL.Query().Get("$top") != "20" {
		t.Fatalf("unexpected query: %s", seen.URL.RawQuery)
	}
	if seen.Header.Get("Prefer") == "" {
		t.Fatalf("expected Prefer header for filtered query")
	}
	if len(out.Items) != 1 || out.Items[0].Fields["Project"] != "atlas" {
		t.Fatalf("unexpected items: %+v", out)
	}
}

func TestListItems_NotFound(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":{"code":"itemNotFound","message":"List not found"}}`)
	})
	_, err := NewListService(m, ListRef{}).Items(context.Background(), &ListItemsInput{Account: Account{Alias: testAlias}}, DefaultScopes(), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
