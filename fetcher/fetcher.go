// Package fetcher retrieves raw HTML for the analyzer. It owns all fetch
// policy: timeouts, user-agent rotation, bounded retries on block-ish
// responses, and response size limits.
package fetcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	browser "github.com/EDDYCJY/fake-useragent"

	"github.com/seo-auditor/backend/analyzer"
	"github.com/seo-auditor/backend/errs"
)

const (
	// maxAttempts bounds retries when the target blocks the crawler.
	maxAttempts = 3
	// maxResponseBody caps the HTML we are willing to read.
	maxResponseBody = 10 << 20
	fallbackAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client implements analyzer.Fetcher over a tuned http.Client.
type Client struct {
	client    *http.Client
	logger    *slog.Logger
	userAgent func() string
}

// New creates a Client with connection pooling and the given per-request
// timeout.
func New(timeout time.Duration, logger *slog.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger:    logger,
		userAgent: randomUserAgent,
	}
}

// Fetch retrieves the page at the given URL, rotating the user agent and
// retrying up to maxAttempts times when the target blocks or throttles the
// request. All failures come back as typed errs.AppError values.
func (c *Client) Fetch(ctx context.Context, targetURL string) (*analyzer.FetchedPage, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		page, retryable, err := c.fetchOnce(ctx, targetURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			return nil, err
		}
		c.logger.Debug("fetch attempt blocked, rotating user agent",
			"url", targetURL, "attempt", attempt, "error", err)
	}

	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, targetURL string) (*analyzer.FetchedPage, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, false, errs.Wrap(errs.InvalidURL, "could not build request for URL", err)
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false, classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusTooManyRequests:
		appErr := &errs.AppError{
			Kind:           errs.Forbidden,
			UpstreamStatus: resp.StatusCode,
			Message:        "the site blocked the crawler",
		}
		return nil, true, appErr
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, &errs.AppError{
			Kind:           errs.NotFound,
			UpstreamStatus: resp.StatusCode,
			Message:        "the page was not found (404)",
		}
	case resp.StatusCode >= 400:
		return nil, false, &errs.AppError{
			Kind:           errs.Unreachable,
			UpstreamStatus: resp.StatusCode,
			Message:        "the site returned an error status " + strconv.Itoa(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, false, classifyTransportError(err)
	}
	duration := time.Since(start)

	size := len(body)
	if contentLength := resp.Header.Get("Content-Length"); contentLength != "" {
		if parsed, err := strconv.Atoi(contentLength); err == nil && parsed > 0 {
			size = parsed
		}
	}

	headers := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &analyzer.FetchedPage{
		URL:        targetURL,
		FinalURL:   finalURL,
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		Headers:    headers,
		SizeBytes:  size,
		Duration:   duration,
	}, false, nil
}

func classifyTransportError(err error) *errs.AppError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.Timeout, "the site took too long to respond", err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return errs.Wrap(errs.Timeout, "the site took too long to respond", err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return errs.Wrap(errs.ConnectionRefused, "the site refused the connection", err)
	default:
		return errs.Wrap(errs.Unreachable, "the site could not be reached", err)
	}
}

// randomUserAgent returns a rotating desktop user agent, falling back to a
// fixed Chrome string when the rotation source is unavailable.
func randomUserAgent() string {
	if ua := browser.Random(); ua != "" {
		return ua
	}
	return fallbackAgent
}
