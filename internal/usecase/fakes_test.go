package usecase

import (
	"context"
	"fmt"
	"time"

	"EssayRC/internal/domain"
)

type fakeEssayRepo struct {
	essays  map[int64]*domain.Essay
	nextID  int64
	failOps map[string]error
}

func newFakeEssayRepo() *fakeEssayRepo {
	return &fakeEssayRepo{essays: map[int64]*domain.Essay{}, failOps: map[string]error{}}
}

func (f *fakeEssayRepo) add(essay domain.Essay) *domain.Essay {
	f.nextID++
	essay.ID = f.nextID
	if essay.ProcessingStatus == "" {
		essay.ProcessingStatus = domain.StatusUnprocessed
	}
	f.essays[essay.ID] = &essay
	return f.essays[essay.ID]
}

func (f *fakeEssayRepo) Insert(_ context.Context, essay domain.Essay) (int64, error) {
	if err := f.failOps["insert"]; err != nil {
		return 0, err
	}
	for _, e := range f.essays {
		if e.Title == essay.Title {
			return 0, &domain.DuplicateError{Field: "title", Value: essay.Title}
		}
		if e.URL == essay.URL {
			return 0, &domain.DuplicateError{Field: "url", Value: essay.URL}
		}
	}
	return f.add(essay).ID, nil
}

func (f *fakeEssayRepo) ExistsByTitleOrURL(_ context.Context, title, url string) (bool, error) {
	if err := f.failOps["exists"]; err != nil {
		return false, err
	}
	for _, e := range f.essays {
		if e.Title == title || e.URL == url {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEssayRepo) GetByID(_ context.Context, id int64) (*domain.Essay, error) {
	essay, ok := f.essays[id]
	if !ok {
		return nil, nil
	}
	copied := *essay
	return &copied, nil
}

func (f *fakeEssayRepo) ListUnprocessed(_ context.Context, limit int) ([]domain.Essay, error) {
	var out []domain.Essay
	for id := f.nextID; id >= 1 && len(out) < limit; id-- {
		if e, ok := f.essays[id]; ok && !e.Processed {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEssayRepo) SetStatus(_ context.Context, id int64, status domain.Status, processingError string) error {
	essay, ok := f.essays[id]
	if !ok {
		return fmt.Errorf("essay %d not found", id)
	}
	essay.ProcessingStatus = status
	essay.ProcessingError = processingError
	return nil
}

func (f *fakeEssayRepo) MarkCompleted(_ context.Context, id int64, at time.Time) error {
	if err := f.failOps["markCompleted"]; err != nil {
		return err
	}
	essay, ok := f.essays[id]
	if !ok {
		return fmt.Errorf("essay %d not found", id)
	}
	essay.Processed = true
	essay.ProcessingStatus = domain.StatusCompleted
	essay.ProcessingError = ""
	essay.ProcessedAt = &at
	return nil
}

type fakeRCRepo struct {
	artifacts map[int64]*domain.RCArtifact // keyed by essay id
	nextID    int64
	insertErr error
}

func newFakeRCRepo() *fakeRCRepo {
	return &fakeRCRepo{artifacts: map[int64]*domain.RCArtifact{}}
}

func (f *fakeRCRepo) Insert(_ context.Context, rc domain.RCArtifact) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	if _, ok := f.artifacts[rc.EssayID]; ok {
		return 0, &domain.DuplicateError{Field: "essayId", Value: fmt.Sprint(rc.EssayID)}
	}
	f.nextID++
	rc.ID = f.nextID
	rc.CreatedAt = time.Now()
	f.artifacts[rc.EssayID] = &rc
	return rc.ID, nil
}

func (f *fakeRCRepo) GetByID(_ context.Context, id int64) (*domain.RCArtifact, error) {
	for _, rc := range f.artifacts {
		if rc.ID == id {
			copied := *rc
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRCRepo) GetByEssayID(_ context.Context, essayID int64) (*domain.RCArtifact, error) {
	rc, ok := f.artifacts[essayID]
	if !ok {
		return nil, nil
	}
	copied := *rc
	return &copied, nil
}

func (f *fakeRCRepo) List(_ context.Context) ([]domain.RCArtifact, error) {
	var out []domain.RCArtifact
	for _, rc := range f.artifacts {
		out = append(out, *rc)
	}
	return out, nil
}

// fakeGenClient replays canned responses and records the prompts it saw.
type fakeGenClient struct {
	responses []string
	err       error
	prompts   []string
}

func (f *fakeGenClient) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	idx := len(f.prompts) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

type fakeLinkSource struct {
	links []string
	err   error
}

func (f *fakeLinkSource) DiscoverLinks(context.Context, int) ([]string, error) {
	return f.links, f.err
}

type fakeScraper struct {
	pages map[string]domain.Essay
	errs  map[string]error
}

func (f *fakeScraper) Scrape(_ context.Context, url string) (domain.Essay, error) {
	if err := f.errs[url]; err != nil {
		return domain.Essay{}, err
	}
	essay, ok := f.pages[url]
	if !ok {
		return domain.Essay{}, &domain.FetchError{URL: url, Status: 404}
	}
	return essay, nil
}
