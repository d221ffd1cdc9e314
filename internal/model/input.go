package model

import (
	"bytes"
	"encoding/json"
)

// ProductInput is a create or update payload: the product keys exactly as
// the client sent them, plus any inline image uploads.
type ProductInput struct {
	Fields       map[string]json.RawMessage
	ImagesBase64 []string
}

// ParseProductInput decodes a request body. The body must be a JSON object.
// Non-string entries in imagesBase64 are dropped, as is a non-array value.
func ParseProductInput(body []byte) (ProductInput, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ProductInput{}, ErrInvalidJSON
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return ProductInput{}, ErrInvalidJSON
	}

	input := ProductInput{Fields: fields}

	if raw, ok := fields[FieldImagesBase64]; ok {
		delete(fields, FieldImagesBase64)

		if uploads, ok := StringElements(raw); ok && len(uploads) > 0 {
			input.ImagesBase64 = uploads
		}
	}

	return input, nil
}

// Has reports whether the payload carries key.
func (in ProductInput) Has(key string) bool {
	_, ok := in.Fields[key]
	return ok
}

// Images returns the string entries of the payload's images array. ok is
// false when the key is absent or does not hold an array; non-string entries
// of an array are skipped.
func (in ProductInput) Images() (images []string, ok bool) {
	raw, present := in.Fields[FieldImages]
	if !present {
		return nil, false
	}
	return StringElements(raw)
}
