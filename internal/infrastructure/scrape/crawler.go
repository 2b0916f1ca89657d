package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"EssayRC/internal/ports"
)

// LinkCrawler walks the paginated essay listing and collects article
// links. Pacing between page fetches comes from the injected fetcher.
type LinkCrawler struct {
	fetch       ports.PageFetcher
	baseURL     string
	listingPath string
	logger      *slog.Logger
}

var _ ports.LinkSource = (*LinkCrawler)(nil)

// NewLinkCrawler wires a paced fetcher with the listing endpoint.
func NewLinkCrawler(fetch ports.PageFetcher, baseURL, listingPath string, logger *slog.Logger) *LinkCrawler {
	return &LinkCrawler{
		fetch:       fetch,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		listingPath: listingPath,
		logger:      logger,
	}
}

// DiscoverLinks fetches listing pages starting at page 1 and stops on
// the first page that yields zero candidate links, or once maxPages is
// reached. A fetch error ends the crawl gracefully: whatever links were
// accumulated so far are returned.
func (c *LinkCrawler) DiscoverLinks(ctx context.Context, maxPages int) ([]string, error) {
	seen := map[string]struct{}{}
	var links []string

	for page := 1; page <= maxPages; page++ {
		pageURL := c.pageURL(page)
		doc, err := c.fetch.Fetch(ctx, pageURL)
		if err != nil {
			c.warn("listing fetch failed, stopping crawl", "page", page, "error", err)
			return links, nil
		}

		pageLinks := c.extractLinks(doc)
		if len(pageLinks) == 0 {
			break
		}

		for _, link := range pageLinks {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
		c.debug("listing page crawled", "page", page, "links", len(pageLinks), "total", len(links))
	}

	return links, nil
}

// pageURL returns the listing URL; for page > 1 a page query parameter
// is appended.
func (c *LinkCrawler) pageURL(page int) string {
	if page <= 1 {
		return c.baseURL + c.listingPath
	}
	return fmt.Sprintf("%s%s?page=%d", c.baseURL, c.listingPath, page)
}

func (c *LinkCrawler) extractLinks(doc *goquery.Document) []string {
	var links []string
	prefix := c.listingPath + "/"

	doc.Find(fmt.Sprintf(`a[href^="%s"]`, prefix)).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if c.acceptLink(href) {
			links = append(links, c.absolute(href))
		}
	})

	return links
}

// acceptLink keeps article paths and rejects the listing root, the
// popular index and any link that itself carries pagination parameters.
func (c *LinkCrawler) acceptLink(href string) bool {
	if href == "" || href == c.listingPath || href == c.listingPath+"/popular" {
		return false
	}
	if !strings.HasPrefix(href, c.listingPath+"/") {
		return false
	}
	if strings.Contains(href, "?page=") || strings.Contains(href, "&page=") {
		return false
	}
	return true
}

func (c *LinkCrawler) absolute(href string) string {
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		return href
	}
	return c.baseURL + href
}

func (c *LinkCrawler) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *LinkCrawler) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
