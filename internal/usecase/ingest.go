package usecase

import (
	"context"
	"log/slog"

	"EssayRC/internal/ports"
)

// IngestReport summarizes one crawl-and-store batch.
type IngestReport struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Ingestor drives the crawler and scraper over a batch of URLs and
// stores the results, skipping duplicates. Per-item failures never abort
// the batch; pacing between fetches comes from the scraper's fetcher.
type Ingestor struct {
	links  ports.LinkSource
	scrape ports.EssayScraper
	essays ports.EssayRepository
	logger *slog.Logger
}

// NewIngestor constructs the ingestion coordinator.
func NewIngestor(links ports.LinkSource, scrape ports.EssayScraper, essays ports.EssayRepository, logger *slog.Logger) *Ingestor {
	return &Ingestor{links: links, scrape: scrape, essays: essays, logger: logger}
}

// CrawlAndIngest discovers essay links and ingests them in one run.
func (i *Ingestor) CrawlAndIngest(ctx context.Context, maxPages int) (IngestReport, error) {
	urls, err := i.links.DiscoverLinks(ctx, maxPages)
	if err != nil {
		return IngestReport{}, err
	}
	i.info("links discovered", "count", len(urls))
	return i.Ingest(ctx, urls), nil
}

// Ingest scrapes each URL and inserts the resulting essay unless the
// store already holds one with the same title or url. Every error is
// logged and counted as a skip; the remaining URLs are always attempted.
func (i *Ingestor) Ingest(ctx context.Context, urls []string) IngestReport {
	var report IngestReport

	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}

		essay, err := i.scrape.Scrape(ctx, u)
		if err != nil {
			i.warn("scrape failed", "url", u, "error", err)
			report.Skipped++
			continue
		}

		if essay.Title == "" || essay.Content == "" {
			i.warn("scraped record unusable", "url", u, "title", essay.Title)
			report.Skipped++
			continue
		}

		exists, err := i.essays.ExistsByTitleOrURL(ctx, essay.Title, essay.URL)
		if err != nil {
			i.warn("duplicate check failed", "url", u, "error", err)
			report.Skipped++
			continue
		}
		if exists {
			i.info("skipping duplicate essay", "title", essay.Title)
			report.Skipped++
			continue
		}

		if _, err := i.essays.Insert(ctx, essay); err != nil {
			// the unique index may still fire between check and insert
			i.warn("insert failed", "url", u, "error", err)
			report.Skipped++
			continue
		}

		i.info("essay added", "title", essay.Title, "words", essay.WordCount)
		report.Added++
	}

	i.info("ingestion finished", "added", report.Added, "skipped", report.Skipped)
	return report
}

func (i *Ingestor) info(msg string, args ...any) {
	if i.logger != nil {
		i.logger.Info(msg, args...)
	}
}

func (i *Ingestor) warn(msg string, args ...any) {
	if i.logger != nil {
		i.logger.Warn(msg, args...)
	}
}
