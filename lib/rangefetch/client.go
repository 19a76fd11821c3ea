// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rangefetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bureau-foundation/httpvfs/lib/netutil"
)

// DefaultTimeout bounds a single request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config holds the parameters for a Client. All fields are optional.
type Config struct {
	// HTTPClient performs the requests. Defaults to a client with no
	// overall timeout (Timeout below applies per request instead).
	HTTPClient *http.Client

	// Timeout bounds each request from send to end of body. Zero
	// means DefaultTimeout; negative disables the bound.
	Timeout time.Duration

	// UserAgent is sent on every request when non-empty.
	UserAgent string

	// Logger receives per-request debug messages. If nil, a no-op
	// logger is used.
	Logger *slog.Logger
}

// Metadata is what a HEAD request reveals about the remote file.
type Metadata struct {
	// Size is the Content-Length, or 0 when the server did not send one.
	Size int64

	// AcceptRanges is true when the server advertised
	// "Accept-Ranges: bytes".
	AcceptRanges bool
}

// StatusError is returned when the server answers with an unexpected
// HTTP status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Client issues HEAD and ranged GET requests. Safe for concurrent use.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// New creates a Client from cfg.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http:      httpClient,
		timeout:   timeout,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Head issues a HEAD request for url and returns the file's metadata.
// Any status other than 200 is a *StatusError.
func (c *Client) Head(ctx context.Context, url string) (Metadata, error) {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	request, err := c.newRequest(ctx, http.MethodHead, url)
	if err != nil {
		return Metadata{}, err
	}

	response, err := c.http.Do(request)
	if err != nil {
		return Metadata{}, fmt.Errorf("HEAD %s: %w", url, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return Metadata{}, &StatusError{
			Method:     http.MethodHead,
			URL:        url,
			StatusCode: response.StatusCode,
		}
	}

	metadata := Metadata{
		AcceptRanges: response.Header.Get("Accept-Ranges") == "bytes",
	}
	if response.ContentLength > 0 {
		metadata.Size = response.ContentLength
	}

	c.logger.Debug("head",
		"url", url,
		"size", metadata.Size,
		"accept_ranges", metadata.AcceptRanges,
	)
	return metadata, nil
}

// FetchRange issues a GET for the inclusive byte range [start, end] of
// url and returns exactly end-start+1 bytes. Status 200 and 206 are
// accepted; anything else is a *StatusError. A body of the wrong length
// is a *netutil.LengthError.
func (c *Client) FetchRange(ctx context.Context, url string, start, end int64) ([]byte, error) {
	if start < 0 || end < start {
		return nil, fmt.Errorf("GET %s: invalid range %d-%d", url, start, end)
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	request, err := c.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	response, err := c.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("GET %s bytes=%d-%d: %w", url, start, end, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusPartialContent {
		return nil, &StatusError{
			Method:     http.MethodGet,
			URL:        url,
			StatusCode: response.StatusCode,
			Body:       netutil.ErrorBody(response.Body),
		}
	}

	data, err := netutil.ReadExact(response.Body, end-start+1)
	if err != nil {
		return nil, fmt.Errorf("GET %s bytes=%d-%d (HTTP %d): %w", url, start, end, response.StatusCode, err)
	}

	c.logger.Debug("fetched range",
		"url", url,
		"start", start,
		"end", end,
		"status", response.StatusCode,
	)
	return data, nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout < 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	request, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	request.Header.Set("Accept-Encoding", "identity")
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}
	return request, nil
}
