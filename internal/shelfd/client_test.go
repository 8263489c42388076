package shelfd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != defaultAPIBind {
		t.Fatalf("host = %q, want %q", u.Host, defaultAPIBind)
	}

	u, err = parseBaseURL("http://example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_ListItemsEncodesQuery(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ItemPage{Items: []LibraryItem{{ID: "li_1", Title: "Dune"}}, Page: 2, Total: 41})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	page, err := client.ListItems(context.Background(), ListQuery{
		Page: 2, PageSize: 20, Sort: "last_read_at", Status: StatusReading, Tag: "sf",
	})
	if err != nil {
		t.Fatalf("ListItems returned error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "li_1" {
		t.Fatalf("page = %#v, want one item li_1", page)
	}
	if gotQuery.Get("page") != "2" || gotQuery.Get("page_size") != "20" {
		t.Fatalf("pagination query = %v", gotQuery)
	}
	if gotQuery.Get("status") != "reading" || gotQuery.Get("tag") != "sf" || gotQuery.Get("sort") != "last_read_at" {
		t.Fatalf("filter query = %v", gotQuery)
	}
	if !strings.HasPrefix(gotUserAgent, "shelfhand/") {
		t.Fatalf("user agent = %q", gotUserAgent)
	}
}

func TestClient_PatchItemSendsSingleFieldBody(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(LibraryItem{ID: "li_1", Status: StatusReading})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	status := StatusReading
	item, err := client.PatchItem(context.Background(), "li_1", ItemPatch{Status: &status})
	if err != nil {
		t.Fatalf("PatchItem returned error: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/library/items/li_1" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if gotBody["status"] != "reading" {
		t.Fatalf("body = %v, want status=reading", gotBody)
	}
	if _, ok := gotBody["visibility"]; ok {
		t.Fatalf("body leaked zero-value fields: %v", gotBody)
	}
	if item.Status != StatusReading {
		t.Fatalf("item status = %q", item.Status)
	}
}

func TestClient_ErrorEnvelopeDecodesToAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"NOT_FOUND","message":"item no longer exists"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.FetchItem(context.Background(), "li_gone")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound(%v) = false, want true", err)
	}
	if got := UserMessage(err, "fallback"); got != "item no longer exists" {
		t.Fatalf("UserMessage = %q", got)
	}
}

func TestClient_NonJSONErrorStillCarriesStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream blew up"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.DeleteItem(context.Background(), "li_1")
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if IsNotFound(err) {
		t.Fatalf("502 misclassified as not-found: %v", err)
	}
	if got := UserMessage(err, "delete failed"); got != "delete failed" {
		t.Fatalf("UserMessage = %q, want fallback", got)
	}
}

func TestClient_IdempotencyKeyHeader(t *testing.T) {
	t.Parallel()

	var cycleKey, logKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/read-cycles"):
			cycleKey = r.Header.Get("Idempotency-Key")
			_ = json.NewEncoder(w).Encode(ReadCycle{ID: "rc_1", ItemID: "li_1", StartedAt: time.Now()})
		case strings.HasSuffix(r.URL.Path, "/progress-logs"):
			logKey = r.Header.Get("Idempotency-Key")
			_ = json.NewEncoder(w).Encode(ProgressLog{ID: "pl_1", CycleID: "rc_1"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()
	if _, err := client.CreateReadCycle(ctx, "li_1", "key-abc"); err != nil {
		t.Fatalf("CreateReadCycle returned error: %v", err)
	}
	entry := ProgressEntry{LoggedAt: time.Now(), Unit: UnitPagesRead, Value: 12}
	if _, err := client.LogProgress(ctx, "rc_1", entry, "key-abc"); err != nil {
		t.Fatalf("LogProgress returned error: %v", err)
	}
	if cycleKey != "key-abc" || logKey != "key-abc" {
		t.Fatalf("idempotency keys = %q, %q, want key-abc for both", cycleKey, logKey)
	}
}

func TestClient_MergeEndpoints(t *testing.T) {
	t.Parallel()

	var previewBody, applyBody MergeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/library/items/merge/preview":
			_ = json.NewDecoder(r.Body).Decode(&previewBody)
			status := StatusReading
			_ = json.NewEncoder(w).Encode(MergePreview{
				Items:   []ItemFieldValues{{ItemID: "li_1", Status: &status}},
				Tallies: map[string]DependencyTally{"li_2": {Notes: 3, ProgressLogs: 7}},
			})
		case "/library/items/merge":
			_ = json.NewDecoder(r.Body).Decode(&applyBody)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	req := MergeRequest{
		ItemIDs:      []string{"li_1", "li_2"},
		TargetItemID: "li_1",
		FieldResolution: map[string]FieldResolution{
			"tags": {CombineTags: true},
		},
	}
	preview, err := client.MergePreview(context.Background(), req)
	if err != nil {
		t.Fatalf("MergePreview returned error: %v", err)
	}
	if previewBody.TargetItemID != "li_1" || len(previewBody.ItemIDs) != 2 {
		t.Fatalf("preview body = %#v", previewBody)
	}
	if preview.Tallies["li_2"].Total() != 10 {
		t.Fatalf("tally total = %d, want 10", preview.Tallies["li_2"].Total())
	}
	if err := client.MergeApply(context.Background(), req, "merge-key"); err != nil {
		t.Fatalf("MergeApply returned error: %v", err)
	}
	if !applyBody.FieldResolution["tags"].CombineTags {
		t.Fatalf("apply body lost resolution map: %#v", applyBody)
	}
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(strings.TrimPrefix(serverURL, "http://"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}
