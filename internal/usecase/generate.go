package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"EssayRC/internal/domain"
	"EssayRC/internal/ports"
	"EssayRC/internal/rcgen"
)

// ErrEssayNotFound is returned when generation is requested for an
// unknown essay id.
var ErrEssayNotFound = errors.New("essay not found")

// GeneratorConfig tunes chunking and pacing of the orchestrator.
type GeneratorConfig struct {
	// MaxWordsPerChunk is the word threshold above which the essay is
	// split before generation (7000 for the high-capacity model
	// configuration, 3000 for the conservative one).
	MaxWordsPerChunk int
	// CallDelay separates successive API calls; sized to the request-rate
	// ceiling of roughly two requests per minute.
	CallDelay time.Duration
	// Model is recorded in artifact metadata.
	Model string
}

// Generator turns one stored essay into a validated RC artifact and
// drives the essay's processing-status state machine. Calls are strictly
// sequential; pacing is a timed sleep, not a scheduling primitive.
type Generator struct {
	essays ports.EssayRepository
	rcs    ports.RCRepository
	client ports.TextGenerator
	cfg    GeneratorConfig
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
}

// NewGenerator constructs the RC orchestrator.
func NewGenerator(essays ports.EssayRepository, rcs ports.RCRepository, client ports.TextGenerator, cfg GeneratorConfig, logger *slog.Logger) *Generator {
	return &Generator{
		essays: essays,
		rcs:    rcs,
		client: client,
		cfg:    cfg,
		logger: logger,
		sleep:  sleepCtx,
		now:    time.Now,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Generate produces the artifact for one essay. When an artifact already
// exists it is returned unchanged with created=false and no API call is
// made. On any failure the essay ends in the failed state with the error
// message recorded, never stuck in processing.
func (g *Generator) Generate(ctx context.Context, essayID int64) (rc *domain.RCArtifact, created bool, err error) {
	essay, err := g.essays.GetByID(ctx, essayID)
	if err != nil {
		return nil, false, err
	}
	if essay == nil {
		return nil, false, ErrEssayNotFound
	}

	existing, err := g.rcs.GetByEssayID(ctx, essayID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	if _, err := domain.Transition(essay.ProcessingStatus, domain.StatusProcessing); err != nil {
		return nil, false, err
	}
	if err := g.essays.SetStatus(ctx, essayID, domain.StatusProcessing, ""); err != nil {
		return nil, false, err
	}

	started := g.now()
	draft, chunks, err := g.produce(ctx, essay)
	if err != nil {
		g.fail(ctx, essayID, err)
		return nil, false, err
	}

	artifact := domain.RCArtifact{
		EssayID:   essayID,
		Summary:   draft.Summary,
		Category:  draft.Category,
		Questions: draft.Questions,
		Metadata: domain.Metadata{
			GeneratedAt:       g.now().UTC(),
			Model:             g.cfg.Model,
			Prompt:            rcgen.PromptID,
			WordCount:         draft.Metadata.WordCount,
			OriginalWordCount: essay.WordCount,
			Chunks:            chunks,
			ProcessingMillis:  g.now().Sub(started).Milliseconds(),
			Repaired:          draft.Repaired,
		},
	}

	id, err := g.rcs.Insert(ctx, artifact)
	if err != nil {
		g.fail(ctx, essayID, err)
		return nil, false, err
	}
	artifact.ID = id

	if err := g.essays.MarkCompleted(ctx, essayID, g.now().UTC()); err != nil {
		// the artifact is stored but the essay must not stay in
		// processing; a retry will find the artifact and finish
		g.fail(ctx, essayID, err)
		return nil, false, err
	}

	g.info("rc generated",
		"essay", essayID,
		"rc", id,
		"summary_words", artifact.Metadata.WordCount,
		"chunks", chunks,
		"repaired", artifact.Metadata.Repaired)

	return &artifact, true, nil
}

// produce runs the generation calls for one essay. Short essays go
// through a single call; long essays are chunked, each chunk condensed
// into a partial summary, and one final combination call produces the RC
// JSON through the same parse/validate path.
func (g *Generator) produce(ctx context.Context, essay *domain.Essay) (rcgen.Draft, int, error) {
	chunks := rcgen.Chunk(essay.Content, g.cfg.MaxWordsPerChunk)

	if len(chunks) <= 1 {
		raw, err := g.client.Generate(ctx, rcgen.RCPrompt(essay.Title, essay.Category, essay.Content))
		if err != nil {
			return rcgen.Draft{}, 0, err
		}
		draft, err := rcgen.Parse(raw)
		return draft, 1, err
	}

	g.info("processing in chunks", "essay", essay.ID, "chunks", len(chunks))

	partials := make([]string, 0, len(chunks))
	for idx, chunk := range chunks {
		if idx > 0 {
			if err := g.sleep(ctx, g.cfg.CallDelay); err != nil {
				return rcgen.Draft{}, 0, err
			}
		}
		raw, err := g.client.Generate(ctx, rcgen.PartialPrompt(essay.Title, idx+1, len(chunks), chunk))
		if err != nil {
			return rcgen.Draft{}, 0, err
		}
		partials = append(partials, raw)
	}

	if err := g.sleep(ctx, g.cfg.CallDelay); err != nil {
		return rcgen.Draft{}, 0, err
	}

	raw, err := g.client.Generate(ctx, rcgen.CombinePrompt(essay.Title, essay.Category, partials))
	if err != nil {
		return rcgen.Draft{}, 0, err
	}
	draft, err := rcgen.Parse(raw)
	return draft, len(chunks), err
}

func (g *Generator) fail(ctx context.Context, essayID int64, cause error) {
	if err := g.essays.SetStatus(ctx, essayID, domain.StatusFailed, cause.Error()); err != nil {
		g.warn("recording failure state failed", "essay", essayID, "error", err)
	}
}

func (g *Generator) info(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Info(msg, args...)
	}
}

func (g *Generator) warn(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Warn(msg, args...)
	}
}
