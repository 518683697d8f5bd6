package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQueryBuilderSelectBuildsPostgRESTQuery(t *testing.T) {
	var captured *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	err := client.Rest.From("items").
		Select("id,name").
		Eq("owner", "u1").
		Gte("price", 10).
		In("status", "open", "closed").
		Order("name", true).
		Limit(5).
		Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if captured.Method != http.MethodGet {
		t.Errorf("method = %s", captured.Method)
	}
	if captured.URL.Path != "/rest/v1/items" {
		t.Errorf("path = %s", captured.URL.Path)
	}
	q := captured.URL.Query()
	if q.Get("select") != "id,name" {
		t.Errorf("select = %q", q.Get("select"))
	}
	if q.Get("owner") != "eq.u1" {
		t.Errorf("owner = %q", q.Get("owner"))
	}
	if q.Get("price") != "gte.10" {
		t.Errorf("price = %q", q.Get("price"))
	}
	if q.Get("status") != "in.(open,closed)" {
		t.Errorf("status = %q", q.Get("status"))
	}
	if q.Get("order") != "name.asc" {
		t.Errorf("order = %q", q.Get("order"))
	}
	if q.Get("limit") != "5" {
		t.Errorf("limit = %q", q.Get("limit"))
	}
}

func TestQueryBuilderInsertSetsPreferHeader(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("prefer = %q", got)
		}
		var rows []item
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	var inserted []item
	err := client.Rest.From("items").
		Insert([]item{{Name: "widget"}}).
		Execute(context.Background(), &inserted)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(inserted) != 1 || inserted[0].Name != "widget" {
		t.Errorf("inserted = %v", inserted)
	}
}

func TestQueryBuilderSingleSetsObjectAccept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.pgrst.object+json" {
			t.Errorf("accept = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 1})
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	var row map[string]any
	if err := client.Rest.From("items").Select("*").Single().Execute(context.Background(), &row); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if row["id"] != float64(1) {
		t.Errorf("row = %v", row)
	}
}

func TestQueryBuilderStickyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be sent for an invalid chain")
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	err := client.Rest.From("").Select("*").Execute(context.Background(), nil)
	if err == nil {
		t.Fatal("expected sticky builder error")
	}
}

func TestQueryBuilderBeforeHookBlocksRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent when the before hook fails")
	}))
	defer srv.Close()

	boom := errors.New("stale credential")
	client := newTestClient(t, srv, nil)
	err := client.Rest.From("items").
		WithBefore(func() error { return boom }).
		Select("*").
		Execute(context.Background(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected before-hook error, got %v", err)
	}
}

func TestRPCPostsParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/rpc/add_item" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var params map[string]any
		_ = json.NewDecoder(r.Body).Decode(&params)
		if params["name"] != "widget" {
			t.Errorf("params = %v", params)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(7)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	var id int
	if err := client.Rest.RPC("add_item", map[string]any{"name": "widget"}).Execute(context.Background(), &id); err != nil {
		t.Fatalf("rpc: %v", err)
	}
	if id != 7 {
		t.Errorf("id = %d", id)
	}
}

func TestSchemaProfileHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if got := r.Header.Get("Accept-Profile"); got != "tenant" {
				t.Errorf("accept-profile = %q", got)
			}
		case http.MethodPost:
			if got := r.Header.Get("Content-Profile"); got != "tenant" {
				t.Errorf("content-profile = %q", got)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		BaseURL:    srv.URL,
		APIKey:     "k",
		HTTPClient: srv.Client(),
		Schema:     "tenant",
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := client.Rest.From("items").Select("*").Execute(context.Background(), nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := client.Rest.From("items").Insert(map[string]any{"a": 1}).Execute(context.Background(), nil); err != nil {
		t.Fatalf("post: %v", err)
	}
}
