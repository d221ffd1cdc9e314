package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// imageSaver implements Saver on top of a Writer.
type imageSaver struct {
	writer  Writer
	baseDir string
	now     func() time.Time
	token   func() string
	logger  zerolog.Logger
}

// NewSaver creates a Saver that stores images through writer and reports
// them as paths relative to the site root under baseDir (e.g. "images").
func NewSaver(writer Writer, baseDir string, logger zerolog.Logger) Saver {
	return &imageSaver{
		writer:  writer,
		baseDir: baseDir,
		now:     time.Now,
		token:   randomToken,
		logger:  logger.With().Str("component", "image-saver").Logger(),
	}
}

// SaveDataURLs decodes and stores every well-formed image data URL.
// Entries are processed concurrently; results are collected by index so
// the returned paths follow input order.
func (s *imageSaver) SaveDataURLs(ctx context.Context, dataURLs []string) []string {
	if len(dataURLs) == 0 {
		return []string{}
	}

	type saveResult struct {
		index int
		path  string
		err   error
	}

	resultChan := make(chan saveResult, len(dataURLs))
	var wg sync.WaitGroup

	for i, raw := range dataURLs {
		parsed, ok := ParseDataURL(raw)
		if !ok {
			s.logger.Debug().Int("index", i).Msg("skipping entry that is not an image data URL")
			continue
		}

		wg.Add(1)
		go func(index int, d DataURL) {
			defer wg.Done()

			p, err := s.save(ctx, d)
			resultChan <- saveResult{
				index: index,
				path:  p,
				err:   err,
			}
		}(i, parsed)
	}

	wg.Wait()
	close(resultChan)

	// Collect results in order
	results := make([]*saveResult, len(dataURLs))
	for result := range resultChan {
		r := result
		results[r.index] = &r
	}

	saved := make([]string, 0, len(dataURLs))
	for _, result := range results {
		if result == nil {
			continue
		}
		if result.err != nil {
			s.logger.Error().
				Err(result.err).
				Int("index", result.index).
				Msg("failed to save uploaded image")
			continue
		}
		saved = append(saved, result.path)
	}

	s.logger.Debug().
		Int("requested", len(dataURLs)).
		Int("saved", len(saved)).
		Msg("uploaded images processed")

	return saved
}

func (s *imageSaver) save(ctx context.Context, d DataURL) (string, error) {
	data, err := d.Decode()
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s.%s", s.now().UnixMilli(), s.token(), d.Ext)
	if err := s.writer.Write(ctx, name, data); err != nil {
		return "", err
	}

	return path.Join(s.baseDir, name), nil
}

// randomToken returns 8 lower-case hex characters.
func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
