// Package fetch retrieves agenda documents over HTTP.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// Custom errors for fetch operations
var (
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	ErrEmptyFeed  = errors.New("feed has no item with a link")
)

// DefaultUserAgent identifies seminarfed to the sites it reads.
const DefaultUserAgent = "seminarfed/1.0 (agenda importer)"

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 10 << 20

// Client fetches documents with a per-attempt timeout and a bounded number
// of attempts for transient failures (network errors, 429 and 5xx).
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Attempts includes the first one. Values below 1 mean 1.
	Attempts int
	// Timeout bounds each attempt. Zero means no per-attempt timeout.
	Timeout time.Duration
	// Backoff is multiplied by the attempt number between attempts.
	Backoff time.Duration
}

// NewClient creates a client with the given settings.
func NewClient(timeout time.Duration, attempts int, userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		HTTPClient: &http.Client{},
		UserAgent:  userAgent,
		Attempts:   attempts,
		Timeout:    timeout,
		Backoff:    250 * time.Millisecond,
	}
}

// FetchHTML fetches url and parses the response as HTML. Any non-2xx
// response is an error.
func (c *Client) FetchHTML(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}

// Get fetches url and returns the response body, retrying transient
// failures.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			wait := time.Duration(i) * c.Backoff
			log.Debug().Err(lastErr).Str("url", url).Int("attempt", i+1).Dur("wait", wait).Msg("retrying fetch")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		body, retry, err := c.tryOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}

	return nil, lastErr
}

func (c *Client) tryOnce(ctx context.Context, url string) ([]byte, bool, error) {
	attemptCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return nil, false, fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		// The caller's context ending is final; anything else may be
		// transient, including the attempt's own timeout.
		return nil, ctx.Err() == nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, fmt.Errorf("%w: %d %s", ErrHTTPStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, false, nil
}
