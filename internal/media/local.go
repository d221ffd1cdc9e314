package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileWriter implements Writer on a local directory.
type fileWriter struct {
	dir    string
	logger zerolog.Logger
}

// NewFileWriter creates a Writer that stores images under dir.
func NewFileWriter(dir string, logger zerolog.Logger) Writer {
	return &fileWriter{
		dir:    dir,
		logger: logger.With().Str("component", "image-writer").Logger(),
	}
}

// Write stores data as dir/name, creating dir when needed.
func (w *fileWriter) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		w.logger.Error().Err(err).Str("dir", w.dir).Msg("failed to create image directory")
		return fmt.Errorf("failed to create image directory %s: %w", w.dir, err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		w.logger.Error().Err(err).Str("file", path).Msg("failed to write image")
		return fmt.Errorf("failed to write image %s: %w", path, err)
	}

	w.logger.Debug().
		Str("file", path).
		Int("bytes", len(data)).
		Msg("image written")

	return nil
}
