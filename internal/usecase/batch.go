package usecase

import (
	"context"
	"log/slog"

	"EssayRC/internal/domain"
)

// BatchFailure records one essay the batch could not process.
type BatchFailure struct {
	EssayID int64  `json:"essayId"`
	Title   string `json:"title"`
	Error   string `json:"error"`
}

// BatchReport summarizes one batch-generation run.
type BatchReport struct {
	Total      int            `json:"total"`
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`
	Chunks     int            `json:"chunks"`
	Failures   []BatchFailure `json:"failures,omitempty"`
}

// BatchRunner processes unprocessed essays sequentially through the
// generator, waiting out the API delay between essays.
type BatchRunner struct {
	generator *Generator
	logger    *slog.Logger
}

// NewBatchRunner constructs the batch driver.
func NewBatchRunner(generator *Generator, logger *slog.Logger) *BatchRunner {
	return &BatchRunner{generator: generator, logger: logger}
}

// Run selects up to batchSize unprocessed essays and generates an RC
// artifact for each. Failures are isolated per essay and collected in
// the report; the batch always attempts every selected essay.
func (b *BatchRunner) Run(ctx context.Context, batchSize int) (BatchReport, error) {
	essays, err := b.generator.essays.ListUnprocessed(ctx, batchSize)
	if err != nil {
		return BatchReport{}, err
	}

	report := BatchReport{Total: len(essays)}
	if len(essays) == 0 {
		return report, nil
	}

	for i, essay := range essays {
		if ctx.Err() != nil {
			break
		}

		rc, created, err := b.generator.Generate(ctx, essay.ID)
		switch {
		case err != nil:
			report.Failed++
			report.Failures = append(report.Failures, BatchFailure{
				EssayID: essay.ID,
				Title:   essay.Title,
				Error:   err.Error(),
			})
			b.warn("batch item failed", "essay", essay.ID, "error", err)
		case created:
			report.Successful++
			report.Chunks += rc.Metadata.Chunks
		default:
			// already had an artifact; nothing was generated
			report.Successful++
		}

		// multi-chunk essays pay per-call delays inside generation whether
		// they succeed or not, so only pause between essays after
		// single-call work; keyed on the essay's size, not the outcome
		if i < len(essays)-1 && !b.chunked(essay) {
			if err := b.generator.sleep(ctx, b.generator.cfg.CallDelay); err != nil {
				break
			}
		}
	}

	b.info("batch finished",
		"total", report.Total,
		"successful", report.Successful,
		"failed", report.Failed,
		"chunks", report.Chunks)

	return report, nil
}

// chunked reports whether the essay is split before generation.
func (b *BatchRunner) chunked(essay domain.Essay) bool {
	max := b.generator.cfg.MaxWordsPerChunk
	return max > 0 && essay.WordCount > max
}

func (b *BatchRunner) info(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Info(msg, args...)
	}
}

func (b *BatchRunner) warn(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}
