package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"attendance/internal/config"

	"github.com/rs/zerolog"
)

// ErrObjectNotFound is returned when a key does not exist in the store
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore reads startup artifacts (datasets, model exports) by key
type ObjectStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Describe names the store in logs, e.g. "file:." or "s3://bucket"
	Describe() string
}

// New returns the store backing the given source setting. Sources that do
// not read objects (postgres, remote) get a nil store.
func New(ctx context.Context, cfg *config.Config, source string, logger zerolog.Logger) (ObjectStore, error) {
	switch source {
	case config.SourceFile:
		return NewFileStore(""), nil
	case config.SourceS3:
		return NewS3Store(ctx, cfg, logger)
	case config.SourcePostgres, config.SourceRemote:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown storage source %q", source)
}

type fileStore struct {
	root string
}

// NewFileStore reads keys as paths relative to root ("" means the working directory).
func NewFileStore(root string) ObjectStore {
	return &fileStore{root: root}
}

func (s *fileStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path := key
	if s.root != "" && !filepath.IsAbs(key) {
		path = filepath.Join(s.root, key)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("opening %s: %w", path, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

func (s *fileStore) Describe() string {
	if s.root == "" {
		return "file:."
	}
	return "file:" + s.root
}
