package shelfd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// API defines the shelfd operations the sync layer consumes.
// This interface is implemented by *Client and can be used for testing.
type API interface {
	ListItems(ctx context.Context, query ListQuery) (ItemPage, error)
	FetchItem(ctx context.Context, id string) (*LibraryItem, error)
	PatchItem(ctx context.Context, id string, patch ItemPatch) (*LibraryItem, error)
	DeleteItem(ctx context.Context, id string) error

	FetchReadCycles(ctx context.Context, itemID string) ([]ReadCycle, error)
	CreateReadCycle(ctx context.Context, itemID, idempotencyKey string) (*ReadCycle, error)
	LogProgress(ctx context.Context, cycleID string, entry ProgressEntry, idempotencyKey string) (*ProgressLog, error)
	FetchStatistics(ctx context.Context, itemID string, query StatsQuery) (*Statistics, error)

	FetchNotes(ctx context.Context, itemID string) ([]Note, error)
	CreateNote(ctx context.Context, itemID string, body string, visibility Visibility) (*Note, error)
	PatchNote(ctx context.Context, noteID string, patch RecordPatch) (*Note, error)
	DeleteNote(ctx context.Context, noteID string) error

	FetchHighlights(ctx context.Context, itemID string) ([]Highlight, error)
	PatchHighlight(ctx context.Context, highlightID string, patch RecordPatch) (*Highlight, error)
	DeleteHighlight(ctx context.Context, highlightID string) error

	FetchReviews(ctx context.Context, itemID string) ([]Review, error)
	PatchReview(ctx context.Context, reviewID string, patch RecordPatch) (*Review, error)
	DeleteReview(ctx context.Context, reviewID string) error

	MergePreview(ctx context.Context, req MergeRequest) (*MergePreview, error)
	MergeApply(ctx context.Context, req MergeRequest, idempotencyKey string) error

	UpdateEditionTotals(ctx context.Context, editionID string, patch TotalsPatch) (*Edition, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the shelfd HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:8399"
	defaultUserAgent = "shelfhand/0.1"
	requestTimeout   = 10 * time.Second

	// Pacing keeps a burst of section loads from hammering the daemon.
	requestsPerSecond = 20
	requestBurst      = 10
)

// NewClient builds a Client using the provided apiBind host:port value.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		userAgent: defaultUserAgent,
	}, nil
}

// ListItems retrieves one page of the library catalogue.
func (c *Client) ListItems(ctx context.Context, query ListQuery) (ItemPage, error) {
	values := url.Values{}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(query.PageSize))
	}
	if sort := strings.TrimSpace(query.Sort); sort != "" {
		values.Set("sort", sort)
	}
	if query.Status != "" {
		values.Set("status", string(query.Status))
	}
	if query.Visibility != "" {
		values.Set("visibility", string(query.Visibility))
	}
	if tag := strings.TrimSpace(query.Tag); tag != "" {
		values.Set("tag", tag)
	}
	rel := &url.URL{Path: "/library/items", RawQuery: values.Encode()}
	var payload ItemPage
	if err := c.do(ctx, http.MethodGet, rel, nil, "", &payload); err != nil {
		return ItemPage{}, err
	}
	return payload, nil
}

// FetchItem retrieves a single catalogue entry.
func (c *Client) FetchItem(ctx context.Context, id string) (*LibraryItem, error) {
	var payload LibraryItem
	if err := c.do(ctx, http.MethodGet, itemPath(id, ""), nil, "", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// PatchItem updates one field of a catalogue entry and returns the server's
// authoritative representation.
func (c *Client) PatchItem(ctx context.Context, id string, patch ItemPatch) (*LibraryItem, error) {
	var payload LibraryItem
	if err := c.do(ctx, http.MethodPatch, itemPath(id, ""), patch, "", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DeleteItem removes a catalogue entry. A 404 is reported as an APIError so
// the caller can treat "already gone" as success.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath(id, ""), nil, "", nil)
}

// FetchReadCycles retrieves an item's read cycles with embedded progress logs.
func (c *Client) FetchReadCycles(ctx context.Context, itemID string) ([]ReadCycle, error) {
	var payload struct {
		Cycles []ReadCycle `json:"read_cycles"`
	}
	if err := c.do(ctx, http.MethodGet, itemPath(itemID, "read-cycles"), nil, "", &payload); err != nil {
		return nil, err
	}
	return payload.Cycles, nil
}

// CreateReadCycle starts a new reading attempt for an item. The idempotency
// key lets a retried ensure-cycle-then-log operation avoid duplicate cycles.
func (c *Client) CreateReadCycle(ctx context.Context, itemID, idempotencyKey string) (*ReadCycle, error) {
	var payload ReadCycle
	if err := c.do(ctx, http.MethodPost, itemPath(itemID, "read-cycles"), nil, idempotencyKey, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// LogProgress appends one progress log to a cycle.
func (c *Client) LogProgress(ctx context.Context, cycleID string, entry ProgressEntry, idempotencyKey string) (*ProgressLog, error) {
	rel := &url.URL{Path: "/read-cycles/" + cycleID + "/progress-logs"}
	var payload ProgressLog
	if err := c.do(ctx, http.MethodPost, rel, entry, idempotencyKey, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchStatistics retrieves the server-computed reading aggregates.
func (c *Client) FetchStatistics(ctx context.Context, itemID string, query StatsQuery) (*Statistics, error) {
	values := url.Values{}
	if tz := strings.TrimSpace(query.TZ); tz != "" {
		values.Set("tz", tz)
	}
	if query.Days > 0 {
		values.Set("days", strconv.Itoa(query.Days))
	}
	rel := itemPath(itemID, "statistics")
	rel.RawQuery = values.Encode()
	var payload Statistics
	if err := c.do(ctx, http.MethodGet, rel, nil, "", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchNotes retrieves an item's notes.
func (c *Client) FetchNotes(ctx context.Context, itemID string) ([]Note, error) {
	var payload struct {
		Notes []Note `json:"notes"`
	}
	if err := c.do(ctx, http.MethodGet, itemPath(itemID, "notes"), nil, "", &payload); err != nil {
		return nil, err
	}
	return payload.Notes, nil
}

// CreateNote attaches a new note to an item.
func (c *Client) CreateNote(ctx context.Context, itemID string, body string, visibility Visibility) (*Note, error) {
	req := struct {
		Body       string     `json:"body"`
		Visibility Visibility `json:"visibility"`
	}{Body: body, Visibility: visibility}
	var payload Note
	if err := c.do(ctx, http.MethodPost, itemPath(itemID, "notes"), req, "", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// PatchNote updates a note's body or visibility.
func (c *Client) PatchNote(ctx context.Context, noteID string, patch RecordPatch) (*Note, error) {
	var payload Note
	if err := c.do(ctx, http.MethodPatch, &url.URL{Path: "/notes/" + noteID}, patch, "", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, noteID string) error {
	return c.do(ctx, http.MethodDelete, &url.URL{Path: "/notes/" + noteID}, nil, "", nil)
}

// FetchHighlights retrieves an item's highlights.
func (c *Client) FetchHighlights(ctx context.Context, itemID string) ([]Highlight, error) {
	var payload struct {
		Highlights []Highlight `json:"highlights"`
	}
	if err := c.do(ctx, http.MethodGet, itemPath(itemID, "highlights"), nil, "", &payload); err != nil {
		return nil, err
	}
	return payload.Highlights, nil
}

// PatchHighlight updates a highlight's text or visibility.
func (c *Client) PatchHighlight(ctx context.Context, highlightID string, patch RecordPatch) (*Highlight, error) {
	var payload Highlight
	if err := c.do(ctx, http.MethodPatch, &url.URL{Path: "/highlights/" + highlightID}, patch, "", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DeleteHighlight removes a highlight.
func (c *Client) DeleteHighlight(ctx context.Context, highlightID string) error {
	return c.do(ctx, http.MethodDelete, &url.URL{Path: "/highlights/" + highlightID}, nil, "", nil)
}

// FetchReviews retrieves the reviews for an item's work.
func (c *Client) FetchReviews(ctx context.Context, itemID string) ([]Review, error) {
	var payload struct {
		Reviews []Review `json:"reviews"`
	}
	if err := c.do(ctx, http.MethodGet, itemPath(itemID, "reviews"), nil, "", &payload); err != nil {
		return nil, err
	}
	return payload.Reviews, nil
}

// PatchReview updates a review's body or visibility.
func (c *Client) PatchReview(ctx context.Context, reviewID string, patch RecordPatch) (*Review, error) {
	var payload Review
	if err := c.do(ctx, http.MethodPatch, &url.URL{Path: "/reviews/" + reviewID}, patch, "", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DeleteReview removes a review.
func (c *Client) DeleteReview(ctx context.Context, reviewID string) error {
	return c.do(ctx, http.MethodDelete, &url.URL{Path: "/reviews/" + reviewID}, nil, "", nil)
}

// MergePreview requests the conflict report and dependency tallies for a
// prospective merge without changing anything.
func (c *Client) MergePreview(ctx context.Context, req MergeRequest) (*MergePreview, error) {
	var payload MergePreview
	if err := c.do(ctx, http.MethodPost, &url.URL{Path: "/library/items/merge/preview"}, req, "", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MergeApply performs the irreversible consolidation.
func (c *Client) MergeApply(ctx context.Context, req MergeRequest, idempotencyKey string) error {
	return c.do(ctx, http.MethodPost, &url.URL{Path: "/library/items/merge"}, req, idempotencyKey, nil)
}

// UpdateEditionTotals persists page or audio-minute totals on an edition.
func (c *Client) UpdateEditionTotals(ctx context.Context, editionID string, patch TotalsPatch) (*Edition, error) {
	var payload Edition
	if err := c.do(ctx, http.MethodPatch, &url.URL{Path: "/editions/" + editionID + "/totals"}, patch, "", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func itemPath(id, sub string) *url.URL {
	p := "/library/items/" + id
	if sub != "" {
		p += "/" + sub
	}
	return &url.URL{Path: p}
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, body any, idempotencyKey string, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle request: %w", err)
	}

	reqURL := c.baseURL.ResolveReference(rel)

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	}
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		// Envelope decoding is best-effort; the status alone is enough for
		// the not-found distinction.
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
