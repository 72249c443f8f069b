// Package client talks to a hound server's JSON API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"houndgrip/internal/domain"
)

// ErrTransport wraps every failure that is not an explicit server rejection:
// network errors, timeouts, non-2xx statuses and undecodable bodies.
var ErrTransport = errors.New("transport failure")

// ServerError is a rejection reported by the server in the response body
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Client is a hound API client
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for the server at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: 30 * time.Second},
		userAgent: "houndgrip",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Search runs a search with already encoded parameters
func (c *Client) Search(ctx context.Context, params url.Values) (*domain.SearchResponse, error) {
	var resp domain.SearchResponse
	if err := c.get(ctx, "api/v1/search", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &ServerError{Message: resp.Error}
	}
	return &resp, nil
}

// Repos fetches the repository catalog keyed by repository id
func (c *Client) Repos(ctx context.Context) (map[string]domain.RepoInfo, error) {
	var repos map[string]domain.RepoInfo
	if err := c.get(ctx, "api/v1/repos", nil, &repos); err != nil {
		return nil, err
	}
	for id, info := range repos {
		info.ID = id
		repos[id] = info
	}
	return repos, nil
}

// get issues a GET and decodes the JSON body into out.
// A body carrying an "Error" field is a ServerError whatever the status code.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var rejection struct {
			Error string `json:"Error"`
		}
		if json.Unmarshal(body, &rejection) == nil && rejection.Error != "" {
			return &ServerError{Message: rejection.Error}
		}
		return fmt.Errorf("%w: %s returned %s", ErrTransport, path, res.Status)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrTransport, path, err)
	}
	return nil
}
