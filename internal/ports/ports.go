package ports

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"EssayRC/internal/domain"
)

// PageFetcher performs a single paced HTTP GET and returns the parsed document.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// LinkSource walks the paginated listing and returns deduplicated
// absolute essay URLs.
type LinkSource interface {
	DiscoverLinks(ctx context.Context, maxPages int) ([]string, error)
}

// EssayScraper extracts one structured essay record from its page.
type EssayScraper interface {
	Scrape(ctx context.Context, url string) (domain.Essay, error)
}

// EssayRepository persists essays and their processing status.
type EssayRepository interface {
	Insert(ctx context.Context, essay domain.Essay) (int64, error)
	ExistsByTitleOrURL(ctx context.Context, title, url string) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Essay, error)
	ListUnprocessed(ctx context.Context, limit int) ([]domain.Essay, error)
	SetStatus(ctx context.Context, id int64, status domain.Status, processingError string) error
	MarkCompleted(ctx context.Context, id int64, at time.Time) error
}

// RCRepository persists generated artifacts; at most one per essay.
type RCRepository interface {
	Insert(ctx context.Context, rc domain.RCArtifact) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.RCArtifact, error)
	GetByEssayID(ctx context.Context, essayID int64) (*domain.RCArtifact, error)
	List(ctx context.Context) ([]domain.RCArtifact, error)
}

// TextGenerator sends one prompt to the generative API and returns the
// raw text of the first completion candidate.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
