package media

import (
	"context"
)

// Saver persists inline image uploads.
type Saver interface {
	// SaveDataURLs stores every entry that is a well-formed image data URL and
	// returns the relative paths of the saved files in input order.
	// Malformed entries and entries that fail to store are skipped.
	SaveDataURLs(ctx context.Context, dataURLs []string) []string
}

// Writer stores decoded image bytes.
type Writer interface {
	// Write stores data under the given file name.
	Write(ctx context.Context, name string, data []byte) error
}
