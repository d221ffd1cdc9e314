package media

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// objectPutter is the subset of the S3 client used for uploads.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Writer implements Writer by uploading images to an S3 bucket.
type s3Writer struct {
	client objectPutter
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Writer creates a Writer that uploads images to bucket under prefix.
func NewS3Writer(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Writer, error) {
	logger = logger.With().Str("component", "s3-image-writer").Logger()

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 image writer initialised")

	return newS3Writer(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newS3Writer(client objectPutter, bucket, prefix string, logger zerolog.Logger) *s3Writer {
	return &s3Writer{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// Write uploads data as prefix+name.
func (w *s3Writer) Write(ctx context.Context, name string, data []byte) error {
	key := w.prefix + name

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		w.logger.Error().
			Err(err).
			Str("bucket", w.bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", w.bucket, key, err)
	}

	w.logger.Debug().
		Str("bucket", w.bucket).
		Str("key", key).
		Int("bytes", len(data)).
		Msg("image uploaded to S3")

	return nil
}

// mirrorWriter writes to a primary Writer and copies successful writes to a mirror.
type mirrorWriter struct {
	primary Writer
	mirror  Writer
	enabled bool
	logger  zerolog.Logger
}

// NewMirrorWriter creates a Writer that stores to primary and, when enabled
// and mirror is non-nil, also to mirror. Mirror failures are logged and do
// not fail the write.
func NewMirrorWriter(primary, mirror Writer, enabled bool, logger zerolog.Logger) Writer {
	return &mirrorWriter{
		primary: primary,
		mirror:  mirror,
		enabled: enabled,
		logger:  logger.With().Str("component", "mirror-image-writer").Logger(),
	}
}

// Write stores data in the primary writer, then the mirror.
func (w *mirrorWriter) Write(ctx context.Context, name string, data []byte) error {
	if err := w.primary.Write(ctx, name, data); err != nil {
		return err
	}

	if !w.enabled || w.mirror == nil {
		return nil
	}

	if err := w.mirror.Write(ctx, name, data); err != nil {
		w.logger.Warn().
			Err(err).
			Str("name", name).
			Msg("failed to mirror image, keeping local copy only")
	}

	return nil
}
