package media

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

var dataURLPattern = regexp.MustCompile(`^data:(image/([a-zA-Z0-9+.-]+));base64,(.+)$`)

// DataURL is a parsed inline image.
type DataURL struct {
	MIME    string
	Ext     string
	Payload string
}

// ParseDataURL matches s against data:image/<subtype>;base64,<payload>.
// The subtype is lower-cased into Ext, with jpeg normalised to jpg.
func ParseDataURL(s string) (DataURL, bool) {
	m := dataURLPattern.FindStringSubmatch(s)
	if m == nil {
		return DataURL{}, false
	}

	ext := strings.ToLower(m[2])
	if ext == "jpeg" {
		ext = "jpg"
	}

	return DataURL{
		MIME:    m[1],
		Ext:     ext,
		Payload: m[3],
	}, true
}

// Decode returns the payload bytes. Padded and unpadded standard base64 are accepted.
func (d DataURL) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(d.Payload)
	if err == nil {
		return data, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(d.Payload); rawErr == nil {
		return raw, nil
	}
	return nil, fmt.Errorf("failed to decode %s payload: %w", d.MIME, err)
}
