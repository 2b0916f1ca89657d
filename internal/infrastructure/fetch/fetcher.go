package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"EssayRC/internal/domain"
	"EssayRC/internal/ports"
)

// Client performs paced HTTP GETs against the source site. Pacing is a
// plain interval limiter with burst 1: the first call goes through
// immediately, every later call waits out the configured delay.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

var _ ports.PageFetcher = (*Client)(nil)

// New builds a fetcher that waits at least delay between calls.
func New(delay time.Duration, userAgent string) *Client {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Client{
		http:      &http.Client{Timeout: 20 * time.Second},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: userAgent,
	}
}

// Fetch GETs the URL and parses the body. Non-200 responses and
// transport failures come back as *domain.FetchError; HTTP 429 as
// *domain.RateLimitError.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.FetchError{URL: pageURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Err: err}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &domain.RateLimitError{FetchError: domain.FetchError{URL: pageURL, Status: resp.StatusCode}}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{URL: pageURL, Status: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Err: err}
	}

	return doc, nil
}
