package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"catalog-cms/internal/model"

	"github.com/rs/zerolog"
)

// fileRepository implements CatalogRepository on a single pretty-printed JSON file.
type fileRepository struct {
	path   string
	logger zerolog.Logger
}

// NewFileRepository creates a catalogue repository backed by the JSON file at path.
func NewFileRepository(path string, logger zerolog.Logger) CatalogRepository {
	return &fileRepository{
		path:   path,
		logger: logger.With().Str("repository", "catalog-file").Str("file", path).Logger(),
	}
}

// Name identifies the backend in logs.
func (r *fileRepository) Name() string {
	return "file"
}

// Load reads the full product array from disk.
// A missing file, or a file whose top-level value is not an array, loads as
// an empty catalogue.
func (r *fileRepository) Load(ctx context.Context) ([]model.Product, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug().Msg("catalog file does not exist yet")
			return []model.Product{}, nil
		}
		r.logger.Error().Err(err).Msg("failed to read catalog file")
		return nil, fmt.Errorf("failed to read catalog file %s: %w", r.path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []model.Product{}, nil
	}
	if trimmed[0] != '[' && json.Valid(trimmed) {
		r.logger.Warn().Msg("catalog file does not hold an array, treating as empty")
		return []model.Product{}, nil
	}

	var products []model.Product
	if err := json.Unmarshal(trimmed, &products); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode catalog file")
		return nil, fmt.Errorf("failed to decode catalog file %s: %w", r.path, err)
	}
	if products == nil {
		products = []model.Product{}
	}

	return products, nil
}

// Save writes the full product array, pretty-printed with two-space indent.
// The file is written to a sibling temp file and renamed into place.
func (r *fileRepository) Save(ctx context.Context, products []model.Product) error {
	if products == nil {
		products = []model.Product{}
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.logger.Error().Err(err).Msg("failed to create catalog directory")
		return fmt.Errorf("failed to create catalog directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".products-*.json")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create temp catalog file")
		return fmt.Errorf("failed to create temp catalog file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		r.logger.Error().Err(err).Msg("failed to write catalog file")
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close catalog file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set catalog file mode: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		r.logger.Error().Err(err).Msg("failed to replace catalog file")
		return fmt.Errorf("failed to replace catalog file %s: %w", r.path, err)
	}

	r.logger.Debug().Int("count", len(products)).Msg("catalog written")

	return nil
}
