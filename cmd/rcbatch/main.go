// Command rcbatch runs one batch of RC generation over unprocessed
// essays and prints a summary report.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"EssayRC/internal/config"
	"EssayRC/internal/infrastructure/llm"
	"EssayRC/internal/infrastructure/storage"
	"EssayRC/internal/logging"
	"EssayRC/internal/rcgen"
	"EssayRC/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	batchSize := flag.Int("n", 0, "number of essays to process (default from config)")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	if *batchSize <= 0 {
		*batchSize = cfg.Generation.BatchSize
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		logger.Error("open database failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	essays := storage.NewEssayRepository(db)
	rcs := storage.NewRCRepository(db)
	gemini := llm.NewGeminiClient(cfg.Gemini, rcgen.SchemaHint)

	generator := usecase.NewGenerator(essays, rcs, gemini, usecase.GeneratorConfig{
		MaxWordsPerChunk: cfg.Generation.MaxWordsPerChunk,
		CallDelay:        cfg.Generation.CallDelay(),
		Model:            cfg.Gemini.Model,
	}, logging.Component(logger, "generator"))

	batch := usecase.NewBatchRunner(generator, logging.Component(logger, "batch"))

	report, err := batch.Run(ctx, *batchSize)
	if err != nil {
		logger.Error("batch run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("processed %d essays: %d successful, %d failed, %d chunks\n",
		report.Total, report.Successful, report.Failed, report.Chunks)
	for i, f := range report.Failures {
		fmt.Printf("%d. %q (essay %d): %s\n", i+1, f.Title, f.EssayID, f.Error)
	}
}
