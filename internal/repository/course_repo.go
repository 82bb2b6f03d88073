package repository

import (
	"context"
	"errors"
	"fmt"

	"attendance/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// CourseRepository defines the interface for interacting with course data
type CourseRepository interface {
	// ListCourses returns every course in insertion order
	ListCourses(ctx context.Context) ([]model.CourseRecord, error)
	// UpsertCourses inserts or updates courses keyed by (year, code) and
	// returns how many rows were written
	UpsertCourses(ctx context.Context, courses []model.CourseRecord) (int, error)
}

type courseRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCourseRepo creates a new CourseRepository
func NewCourseRepo(pool *pgxpool.Pool, logger zerolog.Logger) CourseRepository {
	return &courseRepo{
		pool:   pool,
		logger: logger.With().Str("repository", "CourseRepository").Logger(),
	}
}

// ListCourses retrieves all courses ordered by insertion
func (r *courseRepo) ListCourses(ctx context.Context) ([]model.CourseRecord, error) {
	query := `
		SELECT year, code, title, credits, status
		FROM courses
		ORDER BY id ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}

	courses, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.CourseRecord])
	if err != nil {
		return nil, fmt.Errorf("scanning courses: %w", err)
	}

	// If no courses found, return an empty slice, not nil
	if len(courses) == 0 {
		return []model.CourseRecord{}, nil
	}
	return courses, nil
}

// UpsertCourses writes courses in one transaction. When the input repeats a
// (year, code) pair only the first occurrence is written, matching catalog
// lookup semantics.
func (r *courseRepo) UpsertCourses(ctx context.Context, courses []model.CourseRecord) (int, error) {
	unique := firstPerKey(courses)
	if len(unique) < len(courses) {
		r.logger.Warn().
			Int("input", len(courses)).
			Int("unique", len(unique)).
			Msg("Skipping repeated courses, keeping the first of each")
	}
	if len(unique) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO courses (year, code, title, credits, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (year, code) DO UPDATE
		SET title = EXCLUDED.title,
			credits = EXCLUDED.credits,
			status = EXCLUDED.status,
			updated_at = now()
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.logger.Error().Err(err).Msg("Failed to roll back course upsert")
		}
	}()

	batch := &pgx.Batch{}
	for _, c := range unique {
		batch.Queue(query, c.Year, c.Code, c.Title, c.Credits, string(c.Status))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("upserting courses: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing course upsert: %w", err)
	}
	return len(unique), nil
}

func firstPerKey(courses []model.CourseRecord) []model.CourseRecord {
	type key struct {
		year int
		code string
	}
	seen := make(map[key]struct{}, len(courses))
	out := make([]model.CourseRecord, 0, len(courses))
	for _, c := range courses {
		k := key{year: c.Year, code: c.Code}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}
