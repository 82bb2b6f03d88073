package service

import (
	"context"
	"errors"
	"fmt"

	"attendance/internal/config"
	"attendance/internal/dataset"
	"attendance/internal/model"
	"attendance/internal/repository"
	"attendance/internal/storage"

	"github.com/rs/zerolog"
)

// LoadCatalog reads course records from the source named by CATALOG_SOURCE.
// repo is only used for postgres and store only for file and s3.
func LoadCatalog(ctx context.Context, cfg *config.Config, store storage.ObjectStore, repo repository.CourseRepository, logger zerolog.Logger) ([]model.CourseRecord, error) {
	if cfg.CatalogSource == config.SourcePostgres {
		if repo == nil {
			return nil, errors.New("postgres catalog requires a course repository")
		}
		records, err := repo.ListCourses(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading catalog from postgres: %w", err)
		}
		logger.Info().Int("rows", len(records)).Msg("Catalog rows read from postgres")
		return records, nil
	}

	if store == nil {
		return nil, errors.New("no object store configured for catalog")
	}
	return ReadDataset(ctx, store, cfg.CatalogPath, cfg.CatalogSheet, logger)
}

// ReadDataset opens key in store and parses it as CSV or XLSX by extension.
func ReadDataset(ctx context.Context, store storage.ObjectStore, key, sheet string, logger zerolog.Logger) ([]model.CourseRecord, error) {
	format, err := dataset.FormatFromPath(key)
	if err != nil {
		return nil, err
	}
	rc, err := store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("Failed to close dataset")
		}
	}()

	records, err := dataset.Read(rc, format, sheet)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s/%s: %w", store.Describe(), key, err)
	}
	logger.Info().
		Str("source", store.Describe()).
		Str("key", key).
		Int("rows", len(records)).
		Msg("Catalog rows read")
	return records, nil
}
