package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"EssayRC/internal/domain"
	"EssayRC/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const uniqueViolation = "23505"

// EssayRepository persists essays into Postgres.
type EssayRepository struct {
	db *sql.DB
}

var _ ports.EssayRepository = (*EssayRepository)(nil)

// NewEssayRepository wires a sql.DB implementation.
func NewEssayRepository(db *sql.DB) *EssayRepository {
	return &EssayRepository{db: db}
}

// Insert stores a new essay. Unique-index violations on title or url
// come back as *domain.DuplicateError, so the invariant holds even when
// the pre-insert existence check raced.
func (r *EssayRepository) Insert(ctx context.Context, essay domain.Essay) (int64, error) {
	query, args, err := psql.Insert("essays").
		Columns("title", "url", "category", "content", "published_date", "scraped_date", "word_count", "processing_status").
		Values(essay.Title, essay.URL, essay.Category, essay.Content, essay.PublishedDate, essay.ScrapedDate, essay.WordCount, domain.StatusUnprocessed).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if dup := duplicateFrom(err, essay); dup != nil {
			return 0, dup
		}
		return 0, fmt.Errorf("insert essay: %w", err)
	}

	return id, nil
}

func duplicateFrom(err error, essay domain.Essay) *domain.DuplicateError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}
	if strings.Contains(pqErr.Constraint, "url") {
		return &domain.DuplicateError{Field: "url", Value: essay.URL}
	}
	return &domain.DuplicateError{Field: "title", Value: essay.Title}
}

// ExistsByTitleOrURL reports whether an essay with the same title or the
// same url is already stored.
func (r *EssayRepository) ExistsByTitleOrURL(ctx context.Context, title, url string) (bool, error) {
	query, args, err := psql.Select("1").
		From("essays").
		Where(sq.Or{sq.Eq{"title": title}, sq.Eq{"url": url}}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var one int
	switch err := r.db.QueryRowContext(ctx, query, args...).Scan(&one); {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("query exists: %w", err)
	}
}

var essayColumns = []string{
	"id", "title", "url", "category", "content", "published_date",
	"scraped_date", "word_count", "processed", "processing_status",
	"processing_error", "processed_at",
}

// GetByID loads one essay; a missing row returns (nil, nil).
func (r *EssayRepository) GetByID(ctx context.Context, id int64) (*domain.Essay, error) {
	query, args, err := psql.Select(essayColumns...).
		From("essays").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	essay, err := scanEssay(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get essay %d: %w", id, err)
	}
	return essay, nil
}

// ListUnprocessed returns essays still awaiting RC generation, newest first.
func (r *EssayRepository) ListUnprocessed(ctx context.Context, limit int) ([]domain.Essay, error) {
	query, args, err := psql.Select(essayColumns...).
		From("essays").
		Where(sq.Eq{"processed": false}).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed: %w", err)
	}
	defer rows.Close()

	var essays []domain.Essay
	for rows.Next() {
		essay, err := scanEssay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan essay: %w", err)
		}
		essays = append(essays, *essay)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return essays, nil
}

// SetStatus records a status transition, replacing any previous error message.
func (r *EssayRepository) SetStatus(ctx context.Context, id int64, status domain.Status, processingError string) error {
	query, args, err := psql.Update("essays").
		Set("processing_status", status).
		Set("processing_error", processingError).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

// MarkCompleted flips the essay into its terminal success state.
func (r *EssayRepository) MarkCompleted(ctx context.Context, id int64, at time.Time) error {
	query, args, err := psql.Update("essays").
		Set("processed", true).
		Set("processing_status", domain.StatusCompleted).
		Set("processing_error", "").
		Set("processed_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEssay(row rowScanner) (*domain.Essay, error) {
	var (
		essay       domain.Essay
		processedAt sql.NullTime
		procErr     sql.NullString
	)

	err := row.Scan(
		&essay.ID, &essay.Title, &essay.URL, &essay.Category, &essay.Content,
		&essay.PublishedDate, &essay.ScrapedDate, &essay.WordCount,
		&essay.Processed, &essay.ProcessingStatus, &procErr, &processedAt,
	)
	if err != nil {
		return nil, err
	}

	essay.ProcessingError = procErr.String
	if processedAt.Valid {
		t := processedAt.Time
		essay.ProcessedAt = &t
	}

	return &essay, nil
}

// RCRepository persists generated artifacts. Questions and metadata are
// stored as JSONB documents.
type RCRepository struct {
	db *sql.DB
}

var _ ports.RCRepository = (*RCRepository)(nil)

// NewRCRepository wires a sql.DB implementation.
func NewRCRepository(db *sql.DB) *RCRepository {
	return &RCRepository{db: db}
}

// Insert stores a new artifact. The unique index on essay_id keeps at
// most one artifact per essay.
func (r *RCRepository) Insert(ctx context.Context, rc domain.RCArtifact) (int64, error) {
	questions, err := json.Marshal(rc.Questions)
	if err != nil {
		return 0, fmt.Errorf("marshal questions: %w", err)
	}
	metadata, err := json.Marshal(rc.Metadata)
	if err != nil {
		return 0, fmt.Errorf("marshal metadata: %w", err)
	}

	query, args, err := psql.Insert("rc_artifacts").
		Columns("essay_id", "summary", "category", "questions", "metadata").
		Values(rc.EssayID, rc.Summary, rc.Category, questions, metadata).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return 0, &domain.DuplicateError{Field: "essayId", Value: fmt.Sprint(rc.EssayID)}
		}
		return 0, fmt.Errorf("insert rc: %w", err)
	}

	return id, nil
}

var rcColumns = []string{"id", "essay_id", "summary", "category", "questions", "metadata", "created_at"}

// GetByID loads one artifact; a missing row returns (nil, nil).
func (r *RCRepository) GetByID(ctx context.Context, id int64) (*domain.RCArtifact, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// GetByEssayID loads the artifact owned by an essay; (nil, nil) when absent.
func (r *RCRepository) GetByEssayID(ctx context.Context, essayID int64) (*domain.RCArtifact, error) {
	return r.getOne(ctx, sq.Eq{"essay_id": essayID})
}

func (r *RCRepository) getOne(ctx context.Context, where sq.Eq) (*domain.RCArtifact, error) {
	query, args, err := psql.Select(rcColumns...).
		From("rc_artifacts").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rc, err := scanRC(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rc: %w", err)
	}
	return rc, nil
}

// List returns every stored artifact, newest first.
func (r *RCRepository) List(ctx context.Context) ([]domain.RCArtifact, error) {
	query, args, err := psql.Select(rcColumns...).
		From("rc_artifacts").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rc: %w", err)
	}
	defer rows.Close()

	var artifacts []domain.RCArtifact
	for rows.Next() {
		rc, err := scanRC(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rc: %w", err)
		}
		artifacts = append(artifacts, *rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return artifacts, nil
}

func scanRC(row rowScanner) (*domain.RCArtifact, error) {
	var (
		rc        domain.RCArtifact
		questions []byte
		metadata  []byte
	)

	if err := row.Scan(&rc.ID, &rc.EssayID, &rc.Summary, &rc.Category, &questions, &metadata, &rc.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(questions, &rc.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(metadata, &rc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}

	return &rc, nil
}
