package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientSendsAuthAndVersionHeaders(t *testing.T) {
	var gotAuth, gotVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Notion-Version")
		json.NewEncoder(w).Encode(Page{ID: "abc"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token", "2025-09-03")
	if _, err := client.RetrievePage(context.Background(), "abc"); err != nil {
		t.Fatalf("RetrievePage failed: %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if gotVersion != "2025-09-03" {
		t.Errorf("expected pinned version header, got %q", gotVersion)
	}
}

func TestClientMapsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"object":  "error",
			"status":  404,
			"code":    "object_not_found",
			"message": "Could not find page",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", "2025-09-03")
	_, err := client.RetrievePage(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsNotFound(err) {
		t.Errorf("expected not-found kind, got %v", err)
	}

	upstreamErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if upstreamErr.Message != "Could not find page" {
		t.Errorf("expected upstream message preserved, got %q", upstreamErr.Message)
	}
}

func TestClientMapsGenericUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", "2025-09-03")
	_, err := client.RetrievePage(context.Background(), "abc")
	if err == nil {
		t.Fatal("expected an error")
	}
	if IsNotFound(err) {
		t.Error("a 502 must not map to not-found")
	}
	upstreamErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if upstreamErr.Kind != KindUpstream {
		t.Errorf("expected upstream kind, got %s", upstreamErr.Kind)
	}
}

func TestQueryDataSourceEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(QueryResult{Results: []Page{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", "2025-09-03")
	result, err := client.QueryDataSource(context.Background(), "ds-1", 50)
	if err != nil {
		t.Fatalf("QueryDataSource failed: %v", err)
	}
	if len(result.Results) != 0 {
		t.Errorf("expected zero records, got %d", len(result.Results))
	}
}

func TestQueryDataSourceCapsPageSize(t *testing.T) {
	var gotPageSize float64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		gotPageSize, _ = body["page_size"].(float64)
		json.NewEncoder(w).Encode(QueryResult{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", "2025-09-03")
	if _, err := client.QueryDataSource(context.Background(), "ds-1", 5000); err != nil {
		t.Fatalf("QueryDataSource failed: %v", err)
	}
	if int(gotPageSize) != MaxPageSize {
		t.Errorf("expected page size capped at %d, got %d", MaxPageSize, int(gotPageSize))
	}
}

func TestListBlockChildrenPassesCursor(t *testing.T) {
	var gotCursor, gotPageSize string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCursor = r.URL.Query().Get("start_cursor")
		gotPageSize = r.URL.Query().Get("page_size")
		json.NewEncoder(w).Encode(map[string]any{
			"results":     []any{},
			"has_more":    false,
			"next_cursor": nil,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", "2025-09-03")
	if _, err := client.ListBlockChildren(context.Background(), "page-1", 25, "cursor-xyz"); err != nil {
		t.Fatalf("ListBlockChildren failed: %v", err)
	}
	if gotCursor != "cursor-xyz" {
		t.Errorf("expected cursor passthrough, got %q", gotCursor)
	}
	if gotPageSize != "25" {
		t.Errorf("expected page_size=25, got %q", gotPageSize)
	}
}

func TestBlockUnmarshalFlattensPayload(t *testing.T) {
	raw := `{
		"id": "b1",
		"type": "to_do",
		"has_children": false,
		"to_do": {
			"rich_text": [{"plain_text": "buy oil", "annotations": {"bold": true}}],
			"checked": true
		}
	}`
	var block Block
	if err := json.Unmarshal([]byte(raw), &block); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if block.Type != "to_do" {
		t.Errorf("expected type to_do, got %q", block.Type)
	}
	if !block.Content.Checked {
		t.Error("expected checked payload to survive")
	}
	if got := PlainText(block.Content.RichText); got != "buy oil" {
		t.Errorf("expected rich text payload, got %q", got)
	}
	if !block.Content.RichText[0].Annotations.Bold {
		t.Error("expected bold annotation to survive")
	}
}

func TestBlockUnmarshalUnknownType(t *testing.T) {
	raw := `{"id": "b2", "type": "embed", "has_children": false, "embed": {"url": "https://example.com"}}`
	var block Block
	if err := json.Unmarshal([]byte(raw), &block); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if block.Type != "embed" {
		t.Errorf("expected type embed, got %q", block.Type)
	}
	if len(block.Content.RichText) != 0 {
		t.Errorf("expected no rich text for embed, got %d runs", len(block.Content.RichText))
	}
}

func TestPageTitle(t *testing.T) {
	page := Page{Properties: map[string]PropertyValue{
		"title": {Type: "title", Title: []RichText{{PlainText: "Normativa "}, {PlainText: "interna"}}},
	}}
	if got := page.Title(); got != "Normativa interna" {
		t.Errorf("expected joined title, got %q", got)
	}

	empty := Page{Properties: map[string]PropertyValue{}}
	if got := empty.Title(); got != "" {
		t.Errorf("expected empty title, got %q", got)
	}
}
