package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/academiagorila/bjj-schedule/internal/logger"
)

const (
	UserAgent = "bjj-schedule/1.0 (+https://github.com/academiagorila/bjj-schedule)"
	Timeout   = 30 * time.Second

	// MaxBodySize caps how much of a response is read into memory. Larger
	// bodies are rejected rather than truncated.
	MaxBodySize = 16 << 20
)

// Response is a successful upstream response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client performs GET requests against the upstream site.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	maxBodySize int64
}

// New creates a Client with the default timeout.
func New() *Client {
	return NewWithHTTPClient(&http.Client{Timeout: Timeout})
}

// NewWithHTTPClient creates a Client around an existing http.Client.
func NewWithHTTPClient(hc *http.Client) *Client {
	return &Client{
		httpClient:  hc,
		userAgent:   UserAgent,
		maxBodySize: MaxBodySize,
	}
}

// HTTPClient returns the underlying http.Client so other crawlers can share
// its transport and timeout.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Get fetches url, sending cookies as a single "k=v; k=v" Cookie header.
func (c *Client) Get(ctx context.Context, url string, cookies map[string]string) (*Response, error) {
	start := time.Now()
	resp, err := c.get(ctx, url, cookies)
	logger.RecordTiming("fetch.get", time.Since(start))

	switch {
	case err == nil:
		logger.IncrCounter("fetch.ok")
	case err == ErrNotFound:
		logger.IncrCounter("fetch.not_found")
	default:
		logger.IncrCounter("fetch.error")
	}
	return resp, err
}

func (c *Client) get(ctx context.Context, url string, cookies map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	if header := CookieHeader(cookies); header != "" {
		req.Header.Set("Cookie", header)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, c.maxBodySize)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// CookieHeader serializes cookies as "k=v; k=v" with keys in sorted order.
func CookieHeader(cookies map[string]string) string {
	if len(cookies) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cookies))
	for k := range cookies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+cookies[k])
	}
	return strings.Join(parts, "; ")
}
