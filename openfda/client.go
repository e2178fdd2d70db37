// Package openfda is a client for the api.fda.gov drug endpoints. It layers
// field validation, client-side rate limiting and opaque cursor pagination
// over the raw query API.
package openfda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/fdatools/openfda-mcp/logging"
	"github.com/fdatools/openfda-mcp/metrics"
)

const (
	defaultBaseURL = "https://api.fda.gov"
	requestTimeout = 2 * time.Minute

	// defaultLimit and maxLimit bound page sizes. OpenFDA accepts larger
	// pages but tool output is consumed by language models, so pages stay
	// small.
	defaultLimit = 10
	maxLimit     = 100

	cursorCacheSize = 512
)

// ErrCursorExpired reports a pagination cursor that is unknown or has been
// evicted from the cache.
var ErrCursorExpired = errors.New("cursor expired or unknown")

// SearchRequest describes one OpenFDA query. Search terms are AND-joined in
// deterministic field order.
type SearchRequest struct {
	Endpoint Endpoint
	Search   map[string]string
	Count    string
	Sort     string
	Limit    int
	Skip     int
}

// ResultsMeta is the paging envelope OpenFDA returns.
type ResultsMeta struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Meta carries OpenFDA's response metadata.
type Meta struct {
	Disclaimer  string      `json:"disclaimer"`
	LastUpdated string      `json:"last_updated"`
	Results     ResultsMeta `json:"results"`
}

// SearchResponse is a decoded OpenFDA response. Results are kept as loose
// maps since each endpoint has its own schema. NextCursor is set when more
// pages exist.
type SearchResponse struct {
	Meta       Meta             `json:"meta"`
	Results    []map[string]any `json:"results"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to api.fda.gov. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	cursors    *lru.Cache[string, SearchRequest]
}

// NewClient builds a client. FDA allows 240 requests per minute with an API
// key and 40 without, so the limiter is tuned from whether a key is present.
func NewClient(apiKey string) (*Client, error) {
	cursors, err := lru.New[string, SearchRequest](cursorCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cursor cache: %w", err)
	}

	limit := rate.Limit(40.0 / 60.0)
	burst := 4
	if apiKey != "" {
		limit = rate.Limit(240.0 / 60.0)
		burst = 10
	}

	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(limit, burst),
		cursors:    cursors,
	}, nil
}

// Search validates and executes one OpenFDA query. A query that matches
// nothing returns an empty response, not an error. When further pages exist
// the response carries an opaque cursor for SearchByCursor.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if err := c.normalize(&req); err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	// Count queries have no paging.
	if req.Count == "" && req.Skip+len(resp.Results) < resp.Meta.Results.Total {
		next := req
		next.Skip = req.Skip + len(resp.Results)
		token := uuid.NewString()
		c.cursors.Add(token, next)
		resp.NextCursor = token
	}
	return resp, nil
}

// SearchByCursor continues a paginated search from an opaque cursor issued by
// a previous Search call.
func (c *Client) SearchByCursor(ctx context.Context, cursor string) (*SearchResponse, error) {
	req, ok := c.cursors.Get(cursor)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCursorExpired, cursor)
	}
	c.cursors.Remove(cursor)
	return c.Search(ctx, req)
}

// normalize validates fields and applies limit bounds in place.
func (c *Client) normalize(req *SearchRequest) error {
	for field := range req.Search {
		if err := ValidateField(req.Endpoint, field); err != nil {
			return err
		}
	}
	if req.Count != "" {
		if err := ValidateField(req.Endpoint, strings.TrimSuffix(req.Count, ".exact")); err != nil {
			return err
		}
	}
	if req.Sort != "" {
		field, _, _ := strings.Cut(req.Sort, ":")
		if err := ValidateField(req.Endpoint, field); err != nil {
			return err
		}
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}
	if req.Skip < 0 {
		req.Skip = 0
	}
	return nil
}

func (c *Client) do(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(req), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordOpenFDARequest(string(req.Endpoint), "error")
		return nil, fmt.Errorf("openfda request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close openfda response body", "error", err)
		}
	}()
	metrics.RecordOpenFDARequest(string(req.Endpoint), strconv.Itoa(resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read openfda response: %w", err)
	}

	// OpenFDA answers "no matches" with a 404 NOT_FOUND error object.
	// Callers treat an empty result set as a valid answer, so map it back.
	if resp.StatusCode == http.StatusNotFound {
		var apiErr apiError
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error.Code == "NOT_FOUND" {
			return &SearchResponse{Results: []map[string]any{}}, nil
		}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("openfda returned %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("openfda returned %d", resp.StatusCode)
	}

	var decoded SearchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode openfda response: %w", err)
	}
	if decoded.Results == nil {
		decoded.Results = []map[string]any{}
	}
	return &decoded, nil
}

// requestURL assembles the endpoint URL with search, paging and key
// parameters.
func (c *Client) requestURL(req SearchRequest) string {
	values := url.Values{}
	if expr := buildSearchExpression(req.Search); expr != "" {
		values.Set("search", expr)
	}
	if req.Count != "" {
		values.Set("count", req.Count)
	} else {
		values.Set("limit", strconv.Itoa(req.Limit))
		if req.Skip > 0 {
			values.Set("skip", strconv.Itoa(req.Skip))
		}
		if req.Sort != "" {
			values.Set("sort", req.Sort)
		}
	}
	if c.apiKey != "" {
		values.Set("api_key", c.apiKey)
	}
	return fmt.Sprintf("%s/%s.json?%s", c.baseURL, req.Endpoint, values.Encode())
}

// buildSearchExpression AND-joins field:value terms in sorted field order so
// identical requests produce identical URLs. Values containing whitespace are
// quoted for exact-phrase matching.
func buildSearchExpression(terms map[string]string) string {
	if len(terms) == 0 {
		return ""
	}
	fields := make([]string, 0, len(terms))
	for field := range terms {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		value := strings.TrimSpace(terms[field])
		if value == "" {
			continue
		}
		if strings.ContainsAny(value, " \t") {
			value = `"` + value + `"`
		}
		parts = append(parts, field+":"+value)
	}
	return strings.Join(parts, " AND ")
}
