// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package scrape

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/gigwire/internal/logging"
)

// DefaultUserAgent identifies the scraper politely. Several venue CDNs
// reject the Go default agent outright.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// ClientConfig tunes the shared scraping HTTP client.
type ClientConfig struct {
	Timeout    time.Duration
	MaxRetries int
	// MinDelay is the polite floor between requests to the same client.
	MinDelay  time.Duration
	UserAgent string
}

// Client is the resilient HTTP client every scraper uses. It retries
// transient failures (429, 5xx, network errors) with exponential backoff
// plus jitter, honors Retry-After, and rate-limits its own request stream
// so paginated scrapes do not hammer a venue.
type Client struct {
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
	userAgent  string
}

// NewClient builds a client from config, filling zero values with sane
// defaults (15s timeout, 3 retries, 500ms polite delay).
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.MinDelay <= 0 {
		cfg.MinDelay = 500 * time.Millisecond
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(cfg.MinDelay), 1),
		maxRetries: cfg.MaxRetries,
		userAgent:  cfg.UserAgent,
	}
}

// HTTPClient exposes the underlying client for scrapers that need cookie
// jars or other per-venue customization.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// retryable reports whether a status code is worth another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Do executes the request with bounded retries. The response body is fully
// read and returned; the caller never manages Body lifecycles.
func (c *Client) Do(req *http.Request) ([]byte, int, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	baseDelay := 1 * time.Second
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, 0, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("execute request: %w", err)
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()

			if readErr != nil {
				lastErr = fmt.Errorf("read response: %w", readErr)
			} else if !retryable(resp.StatusCode) {
				return body, resp.StatusCode, nil
			} else {
				lastErr = fmt.Errorf("http %d from %s", resp.StatusCode, req.URL.Host)
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				if delay, ok := retryAfterDelay(resp.Header.Get("Retry-After")); ok {
					if err := sleepCtx(req.Context(), delay); err != nil {
						return nil, 0, err
					}
					continue
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}

		// Exponential backoff with up to 30% jitter.
		delay := baseDelay * (1 << attempt)
		delay += time.Duration(rand.Int63n(int64(delay) * 3 / 10)) //nolint:gosec // Jitter, not crypto
		logging.Debug().Err(lastErr).Int("attempt", attempt+1).Dur("delay", delay).Str("url", req.URL.String()).Msg("Retrying request")

		if err := sleepCtx(req.Context(), delay); err != nil {
			return nil, 0, err
		}
	}

	return nil, 0, fmt.Errorf("after %d attempts: %w", c.maxRetries+1, lastErr)
}

// Get fetches url and returns the body. Non-2xx terminal statuses are
// errors; scrapers that branch on status use Do directly.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	body, status, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("http %d fetching %s", status, url)
	}
	return body, nil
}

// GetJSON fetches url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, v any) error {
	if headers == nil {
		headers = map[string]string{}
	}
	if _, ok := headers["Accept"]; !ok {
		headers["Accept"] = "application/json"
	}

	body, err := c.Get(ctx, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode json from %s: %w", url, err)
	}
	return nil
}

// PostJSON sends a JSON payload and decodes the JSON response into v.
// GraphQL sources (Live Nation) post queries rather than GET them.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, payload, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(data)))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	body, status, err := c.Do(req)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("http %d posting to %s", status, url)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode json from %s: %w", url, err)
	}
	return nil
}

// GetDocument fetches url and parses it as an HTML document.
func (c *Client) GetDocument(ctx context.Context, url string, headers map[string]string) (*goquery.Document, error) {
	body, err := c.Get(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", url, err)
	}
	return doc, nil
}

// retryAfterDelay parses a Retry-After header given in seconds.
func retryAfterDelay(header string) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
