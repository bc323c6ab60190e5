package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/greghughespdx/brain-mcp-server/internal/errs"
	"github.com/greghughespdx/brain-mcp-server/internal/logutil"
	"github.com/greghughespdx/brain-mcp-server/internal/obs"
	"github.com/greghughespdx/brain-mcp-server/internal/urlutil"
)

const errorBodyPreviewChars = 200

// ListOptions filters ListEntries. A zero value lists everything with the
// server's default page size.
type ListOptions struct {
	Limit  int
	Status string
	Domain string
	Type   string
}

// UpdateParams holds the mutable fields of an entry. Nil fields are omitted
// from the request so the server keeps their current values.
type UpdateParams struct {
	Title   *string `json:"title,omitempty"`
	RawText *string `json:"raw_text,omitempty"`
	Status  *string `json:"status,omitempty"`
	Type    *string `json:"type,omitempty"`
	Domain  *string `json:"domain,omitempty"`
}

// Client talks to the Brain API. All requests share one http.Client with
// the configured timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Brain API client. baseURL must be absolute;
// a trailing slash is tolerated.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: urlutil.Normalize(baseURL),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: obs.Pkg("brain"),
	}
}

// CreateEntry stores a new entry and returns the server's copy, which may
// include classification results.
func (c *Client) CreateEntry(ctx context.Context, entry *Entry) (*Entry, error) {
	var created Entry
	if err := c.do(ctx, http.MethodPost, "/brain/entries", nil, entry, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Search runs a full-text search over stored entries.
func (c *Client) Search(ctx context.Context, query string) ([]Entry, error) {
	params := url.Values{}
	params.Set("q", query)

	var results []Entry
	if err := c.do(ctx, http.MethodGet, "/brain/search", params, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ListEntries returns recent entries, newest first, filtered by opts.
func (c *Client) ListEntries(ctx context.Context, opts ListOptions) ([]Entry, error) {
	params := url.Values{}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Domain != "" {
		params.Set("domain", opts.Domain)
	}
	if opts.Type != "" {
		params.Set("type", opts.Type)
	}

	var results []Entry
	if err := c.do(ctx, http.MethodGet, "/brain/entries", params, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetEntry fetches a single entry by ID.
func (c *Client) GetEntry(ctx context.Context, id string) (*Entry, error) {
	if id == "" {
		return nil, errs.New(errs.InvalidArgument, "entry id must not be empty")
	}

	var entry Entry
	if err := c.do(ctx, http.MethodGet, "/brain/entries/"+url.PathEscape(id), nil, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry applies a partial update and returns the updated entry.
func (c *Client) UpdateEntry(ctx context.Context, id string, params UpdateParams) (*Entry, error) {
	if id == "" {
		return nil, errs.New(errs.InvalidArgument, "entry id must not be empty")
	}

	var entry Entry
	if err := c.do(ctx, http.MethodPut, "/brain/entries/"+url.PathEscape(id), nil, params, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteEntry removes an entry by ID.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	if id == "" {
		return errs.New(errs.InvalidArgument, "entry id must not be empty")
	}
	return c.do(ctx, http.MethodDelete, "/brain/entries/"+url.PathEscape(id), nil, nil, nil)
}

// do performs one API round trip: marshal reqBody (if any), send, check
// status, decode into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, params url.Values, reqBody, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return errs.Wrap(errs.Internal, "failed to encode request", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errs.Wrap(errs.Internal, "failed to build request", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "brain_api_unreachable",
			"method", method,
			"path", path,
			"error", err.Error(),
		)
		return errs.Wrap(errs.Unavailable, "Brain API is unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.Unavailable, "failed to read Brain API response", err)
	}

	c.logger.DebugContext(ctx, "brain_api_call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"dur_ms", time.Since(start).Milliseconds(),
		"resp_bytes", len(respBody),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		preview := logutil.TruncateForLog(string(respBody), errorBodyPreviewChars)
		return errs.New(
			errs.FromHTTPStatus(resp.StatusCode),
			fmt.Sprintf("Brain API returned status %d: %s", resp.StatusCode, preview),
		)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errs.Wrap(errs.Internal, "failed to decode Brain API response", err)
	}
	return nil
}
