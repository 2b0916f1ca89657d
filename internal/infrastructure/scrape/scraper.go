package scrape

import (
	"context"
	"log/slog"
	"time"

	"EssayRC/internal/domain"
	"EssayRC/internal/ports"
)

// EssayScraper fetches one article page and extracts a structured essay
// record. A record with an empty title or content is still returned;
// deciding whether it is usable belongs to ingestion.
type EssayScraper struct {
	fetch  ports.PageFetcher
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.EssayScraper = (*EssayScraper)(nil)

// NewEssayScraper wires a paced fetcher.
func NewEssayScraper(fetch ports.PageFetcher, logger *slog.Logger) *EssayScraper {
	return &EssayScraper{fetch: fetch, logger: logger, now: time.Now}
}

// Scrape extracts title, category, content paragraphs and publish date
// from the page. Fetch failures surface as *domain.FetchError so the
// caller can log and continue with the next URL.
func (s *EssayScraper) Scrape(ctx context.Context, pageURL string) (domain.Essay, error) {
	doc, err := s.fetch.Fetch(ctx, pageURL)
	if err != nil {
		return domain.Essay{}, err
	}

	content := extractField(doc, contentStrategies)
	essay := domain.Essay{
		Title:            extractField(doc, titleStrategies),
		URL:              pageURL,
		Category:         extractField(doc, categoryStrategies),
		Content:          content,
		PublishedDate:    extractField(doc, dateStrategies),
		ScrapedDate:      s.now().UTC(),
		WordCount:        domain.CountWords(content),
		ProcessingStatus: domain.StatusUnprocessed,
	}

	if s.logger != nil {
		s.logger.Debug("essay scraped",
			"url", pageURL,
			"title", essay.Title,
			"words", essay.WordCount,
			"category", essay.Category)
	}

	return essay, nil
}
