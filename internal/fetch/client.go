// Package fetch downloads published CSV reports over HTTP.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/fairyhunter13/price-stock-merger/internal/obs"
	"github.com/fairyhunter13/price-stock-merger/internal/ratelimit"
)

const maxBodyBytes = 64 << 20

var (
	// ErrHTMLPage is returned when a source answers 200 with a web page instead of CSV,
	// typically a sign-in page for a sheet that is no longer published.
	ErrHTMLPage = errors.New("fetch: source returned an HTML page")
	// ErrTooLarge is returned when a body exceeds the size limit.
	ErrTooLarge = errors.New("fetch: response body too large")
	// ErrInvalidUTF8 is returned when a body is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("fetch: response body is not valid UTF-8")
)

// StatusError reports a non-200 response. The body is not read.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received non-OK status code %d from %s", e.StatusCode, e.URL)
}

// Client is a rate-limited HTTP client for report downloads.
type Client struct {
	http    *http.Client
	limiter *ratelimit.Keyed
}

// New creates a Client with a per-request timeout and a per-host rate limit.
func New(timeout time.Duration, rps float64, burst int) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: ratelimit.New(rps, burst),
	}
}

// WithHTTPClient replaces the underlying http.Client, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Get downloads rawURL and returns its body as UTF-8 with any byte-order mark removed.
// Any status other than 200 yields a *StatusError.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if err := c.limiter.Wait(ctx, u.Host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")
	req.Header.Set("User-Agent", "price-stock-merger/1.0")

	start := time.Now()
	obs.Logger.Debug("fetch_start", "host", u.Host)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, ErrTooLarge
	}

	if looksLikeHTML(resp.Header.Get("Content-Type"), body) {
		if title := pageTitle(body); title != "" {
			return nil, fmt.Errorf("%w (title %q)", ErrHTMLPage, title)
		}
		return nil, ErrHTMLPage
	}

	if !utf8.Valid(body) {
		return nil, ErrInvalidUTF8
	}
	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	obs.Logger.Info("fetch_complete",
		"host", u.Host,
		"status", resp.StatusCode,
		"bytes", len(text),
		"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return text, nil
}

func looksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body[:min(len(body), 512)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}
