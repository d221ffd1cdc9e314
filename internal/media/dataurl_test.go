package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURL(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectMatch bool
		expectedExt string
		expectedMIM string
	}{
		{
			name:        "PNG",
			input:       "data:image/png;base64,iVBORw0KGgo=",
			expectMatch: true,
			expectedExt: "png",
			expectedMIM: "image/png",
		},
		{
			name:        "JPEG normalised to jpg",
			input:       "data:image/jpeg;base64,/9j/4AAQ",
			expectMatch: true,
			expectedExt: "jpg",
			expectedMIM: "image/jpeg",
		},
		{
			name:        "Upper-case subtype is lowered",
			input:       "data:image/WEBP;base64,UklGRg==",
			expectMatch: true,
			expectedExt: "webp",
			expectedMIM: "image/WEBP",
		},
		{
			name:        "SVG subtype keeps plus sign",
			input:       "data:image/svg+xml;base64,PHN2Zz4=",
			expectMatch: true,
			expectedExt: "svg+xml",
			expectedMIM: "image/svg+xml",
		},
		{
			name:  "Not an image",
			input: "data:text/plain;base64,aGVsbG8=",
		},
		{
			name:  "Missing base64 marker",
			input: "data:image/png,iVBORw0KGgo=",
		},
		{
			name:  "Empty payload",
			input: "data:image/png;base64,",
		},
		{
			name:  "Plain path",
			input: "images/existing.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ParseDataURL(tt.input)

			assert.Equal(t, tt.expectMatch, ok)
			if tt.expectMatch {
				assert.Equal(t, tt.expectedExt, d.Ext)
				assert.Equal(t, tt.expectedMIM, d.MIME)
			}
		})
	}
}

func TestDataURL_Decode(t *testing.T) {
	t.Run("Padded payload", func(t *testing.T) {
		d, ok := ParseDataURL("data:image/png;base64,aGVsbG8=")
		require.True(t, ok)

		data, err := d.Decode()
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("Unpadded payload", func(t *testing.T) {
		d, ok := ParseDataURL("data:image/png;base64,aGVsbG8")
		require.True(t, ok)

		data, err := d.Decode()
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("Invalid payload", func(t *testing.T) {
		d, ok := ParseDataURL("data:image/png;base64,!!!not-base64!!!")
		require.True(t, ok)

		_, err := d.Decode()
		assert.Error(t, err)
	})
}
