// Package client issues queries to the streaming search endpoint.
//
// A Client performs one GET per query with browser-like headers and never
// follows redirects. The timeout bounds the wait for response headers and
// then every gap between body reads, so a long answer that keeps streaming
// completes. Consecutive queries can be paced with a minimum interval.
// There are no retries.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ousax/scrap/iox"
	"github.com/ousax/scrap/types"
)

// DefaultEndpoint is the streaming search API.
const DefaultEndpoint = "https://you.com/api/streamingSearch"

// DefaultTimeout bounds the wait for headers and each idle gap in the body.
const DefaultTimeout = 20 * time.Second

// ErrTimeout is reported when the server stays silent for longer than the
// configured timeout.
var ErrTimeout = errors.New("timed out waiting for server")

// MaxBodySize bounds a buffered response body read by Search.
const MaxBodySize = 32 * 1024 * 1024

// Fixed query parameters sent with every request.
const (
	safeSearch     = "Moderate"
	market         = "en-US"
	responseFilter = "WebPages,Translations,TimeZone,Computation,RelatedSearches"
	domain         = "youchat"
)

var defaultHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "fr,fr-FR;q=0.8,en-US;q=0.5,en;q=0.3",
	"Connection":      "keep-alive",
	"Sec-Fetch-Dest":  "document",
	"Sec-Fetch-User":  "?1",
}

// Config configures a Client.
type Config struct {
	// Endpoint is the search URL (default DefaultEndpoint).
	Endpoint string
	// Timeout bounds the wait for headers and each idle gap between body
	// reads (default 20s).
	Timeout time.Duration
	// MinInterval is the minimum delay between consecutive queries.
	// Zero disables pacing.
	MinInterval time.Duration
	// UserAgent overrides the browser user agent.
	UserAgent string
	// Transport overrides the HTTP transport (proxy pools, tests).
	Transport http.RoundTripper
}

// Query is one search request.
type Query struct {
	Prompt string
	// Page is the 1-based result page (default 1).
	Page int
	// Count is the number of results requested (default 1).
	Count int
}

// Response is a successful search response with a live body.
// Callers must close Body.
type Response struct {
	StatusCode int
	Body       io.ReadCloser
}

// BufferedResponse is a successful search response read to completion.
type BufferedResponse struct {
	StatusCode int
	Body       string
}

// Client queries the search endpoint.
type Client struct {
	config  Config
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a client from the given config.
// Returns an error if the endpoint is not an absolute URL.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", cfg.Endpoint)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MinInterval < 0 {
		return nil, fmt.Errorf("min interval must be >= 0, got %s", cfg.MinInterval)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = types.UserAgent
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	return &Client{
		config: cfg,
		http: &http.Client{
			Transport: cfg.Transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// Open issues the query and returns the live response. Transport failures
// and non-2xx statuses are returned as *NetworkError.
func (c *Client) Open(ctx context.Context, q Query) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Op: "wait", Err: err}
	}

	ctx, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(c.config.Timeout, func() { cancel(ErrTimeout) })
	release := func() {
		timer.Stop()
		cancel(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(q), nil)
	if err != nil {
		release()
		return nil, &NetworkError{Op: "create request", Err: err}
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		err = timeoutCause(ctx, err)
		release()
		return nil, &NetworkError{Op: "get", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		iox.DrainClose(resp.Body)
		release()
		return nil, &NetworkError{
			Op:         "get",
			StatusCode: resp.StatusCode,
			Err:        &StatusError{Code: resp.StatusCode},
		}
	}

	body := &idleBody{
		ctx:     ctx,
		rc:      resp.Body,
		timer:   timer,
		timeout: c.config.Timeout,
		release: release,
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// idleBody arms the timeout around every read and cancels the request
// when a read waits longer than that.
type idleBody struct {
	ctx     context.Context
	rc      io.ReadCloser
	timer   *time.Timer
	timeout time.Duration
	release func()
}

func (b *idleBody) Read(p []byte) (int, error) {
	b.timer.Reset(b.timeout)
	n, err := b.rc.Read(p)
	b.timer.Stop()
	if err != nil && !errors.Is(err, io.EOF) {
		err = timeoutCause(b.ctx, err)
	}
	return n, err
}

func (b *idleBody) Close() error {
	b.release()
	return b.rc.Close()
}

// timeoutCause replaces err with ErrTimeout when the request was cancelled
// by the timer.
func timeoutCause(ctx context.Context, err error) error {
	if errors.Is(context.Cause(ctx), ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// Search issues the query and reads the whole body.
func (c *Client) Search(ctx context.Context, q Query) (*BufferedResponse, error) {
	resp, err := c.Open(ctx, q)
	if err != nil {
		return nil, err
	}
	defer iox.DiscardClose(resp.Body)

	body, err := iox.ReadAllLimit(resp.Body, MaxBodySize)
	if err != nil {
		return nil, &NetworkError{Op: "read body", Err: err}
	}
	return &BufferedResponse{StatusCode: resp.StatusCode, Body: string(body)}, nil
}

// URL returns the request URL for q.
func (c *Client) URL(q Query) string {
	page, count := q.Page, q.Count
	if page <= 0 {
		page = 1
	}
	if count <= 0 {
		count = 1
	}

	params := url.Values{}
	params.Set("q", q.Prompt)
	params.Set("page", strconv.Itoa(page))
	params.Set("count", strconv.Itoa(count))
	params.Set("safeSearch", safeSearch)
	params.Set("mkt", market)
	params.Set("responseFilter", responseFilter)
	params.Set("domain", domain)
	params.Set("use_personalization_extraction", "true")

	return c.config.Endpoint + "?" + params.Encode()
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// NetworkError reports a failed search request: a transport failure, a
// timeout, or a non-2xx status.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API request failed with status code %d", e.StatusCode)
	}
	return fmt.Sprintf("Network request failed - %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
