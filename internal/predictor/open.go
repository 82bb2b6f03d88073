package predictor

import (
	"context"
	"errors"
	"time"

	"attendance/internal/config"
	"attendance/internal/storage"

	"github.com/rs/zerolog"
)

// Open loads the model configured by MODEL_SOURCE. Every failure is a
// *ModelUnavailableError.
func Open(ctx context.Context, cfg *config.Config, store storage.ObjectStore, logger zerolog.Logger) (Predictor, error) {
	if cfg.ModelSource == config.SourceRemote {
		timeout := time.Duration(cfg.ModelRequestTimeoutSec) * time.Second
		return NewRemotePredictor(ctx, cfg.ModelServiceBaseURL, timeout, logger)
	}
	return LoadArtifact(ctx, store, cfg.ModelPath, logger)
}

// LoadArtifact reads, decodes and validates an artifact export from store.
func LoadArtifact(ctx context.Context, store storage.ObjectStore, key string, logger zerolog.Logger) (Predictor, error) {
	if store == nil {
		return nil, unavailable(key, errors.New("no object store configured"))
	}
	source := store.Describe() + "/" + key

	rc, err := store.Open(ctx, key)
	if err != nil {
		return nil, unavailable(source, err)
	}
	defer rc.Close()

	artifact, err := DecodeArtifact(rc)
	if err != nil {
		return nil, unavailable(source, err)
	}

	logger.Info().
		Str("source", source).
		Int("estimators", len(artifact.Estimators)).
		Str("encoding_version", artifact.EncodingVersion).
		Msg("Model artifact loaded")
	return NewArtifactPredictor(artifact, source), nil
}
