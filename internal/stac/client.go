package stac

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"scene-finder/internal/ratelimit"
	"scene-finder/internal/scene"
)

const (
	// User agent sent with every catalog request
	UserAgent = "scene-finder/1.0"

	// Maximum bytes of an error response kept for the error message
	maxErrorBody = 512
)

// Client searches a STAC API catalog
type Client struct {
	baseURL    string
	provider   string
	httpClient *http.Client
	maxItems   int
	limiter    *ratelimit.Handler
	log        zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. A nil client is ignored.
// The client is copied, so a later WithTimeout does not modify hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		clone := *hc
		c.httpClient = &clone
	}
}

// WithTimeout bounds each catalog request; zero disables the timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMaxItems stops paging once n items are collected; zero means no cap
func WithMaxItems(n int) Option {
	return func(c *Client) { c.maxItems = n }
}

// WithRateLimiter reports catalog responses to h and refuses searches
// while h holds the catalog in cooldown
func WithRateLimiter(h *ratelimit.Handler) Option {
	return func(c *Client) { c.limiter = h }
}

// WithLogger sets the client logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a catalog client with system proxy support
func NewClient(baseURL string, opts ...Option) *Client {
	// Use http.ProxyFromEnvironment to respect system proxy settings
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   60 * time.Second,
			Transport: transport,
		},
		log: zerolog.Nop(),
	}
	if u, err := url.Parse(c.baseURL); err == nil && u.Host != "" {
		c.provider = u.Host
	} else {
		c.provider = c.baseURL
	}

	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "stac").Str("catalog", c.provider).Logger()
	return c
}

// Provider returns the key the client reports rate limits under
func (c *Client) Provider() string {
	return c.provider
}

// pageRequest is one request in a paginated search
type pageRequest struct {
	method string
	url    string
	body   map[string]any
}

// Search runs the query and returns every matching record, following
// rel="next" links until the catalog runs out of pages or maxItems is hit.
// All failures are returned as *TransportError.
func (c *Client) Search(ctx context.Context, q Query) ([]scene.Record, error) {
	searchURL := c.baseURL + "/search"

	if c.limiter != nil {
		if event, limited := c.limiter.Check(c.provider); limited {
			return nil, &TransportError{
				URL: searchURL,
				Err: fmt.Errorf("%w until %s", ErrRateLimited, event.NextRetryAt.Format(time.RFC3339)),
			}
		}
	}

	body, err := toMap(q.Body())
	if err != nil {
		return nil, &TransportError{URL: searchURL, Err: fmt.Errorf("failed to encode search body: %w", err)}
	}

	req := pageRequest{method: http.MethodPost, url: searchURL, body: body}
	var records []scene.Record
	for page := 1; ; page++ {
		collection, err := c.fetchPage(ctx, req)
		if err != nil {
			return nil, err
		}

		for _, item := range collection.Features {
			record, err := item.Record()
			if err != nil {
				return nil, &TransportError{URL: req.url, Err: fmt.Errorf("invalid item in response: %w", err)}
			}
			records = append(records, record)
		}

		c.log.Debug().
			Int("page", page).
			Int("features", len(collection.Features)).
			Int("total", len(records)).
			Msg("fetched search page")

		if c.maxItems > 0 && len(records) >= c.maxItems {
			records = records[:c.maxItems]
			break
		}

		next, ok := collection.NextLink()
		if !ok || len(collection.Features) == 0 {
			break
		}
		req = nextRequest(req, next)
	}

	return records, nil
}

// nextRequest builds the follow-up request described by a rel="next" link
func nextRequest(prev pageRequest, link Link) pageRequest {
	if strings.EqualFold(link.Method, http.MethodPost) {
		body := link.Body
		if link.Merge || body == nil {
			body = lo.Assign(prev.body, link.Body)
		}
		return pageRequest{method: http.MethodPost, url: link.Href, body: body}
	}
	return pageRequest{method: http.MethodGet, url: link.Href}
}

// fetchPage performs one catalog request and decodes the item collection
func (c *Client) fetchPage(ctx context.Context, pr pageRequest) (*ItemCollection, error) {
	var reader io.Reader
	if pr.body != nil && pr.method == http.MethodPost {
		payload, err := json.Marshal(pr.body)
		if err != nil {
			return nil, &TransportError{URL: pr.url, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, pr.method, pr.url, reader)
	if err != nil {
		return nil, &TransportError{URL: pr.url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/geo+json, application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: pr.url, Err: err}
	}
	defer resp.Body.Close()

	if c.limiter != nil && c.limiter.CheckResponse(c.provider, resp) {
		return nil, &TransportError{URL: pr.url, StatusCode: resp.StatusCode, Err: ErrRateLimited}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &TransportError{
			URL:        pr.url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(snippet))),
		}
	}

	var collection ItemCollection
	if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
		return nil, &TransportError{URL: pr.url, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return &collection, nil
}

func toMap(body SearchBody) (map[string]any, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
