package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Keys of a product record as they appear on the wire and on disk.
const (
	FieldID               = "id"
	FieldCategory         = "category"
	FieldCategoryName     = "category_name"
	FieldName             = "name"
	FieldShortDescription = "short_description"
	FieldPriceFrom        = "price_from"
	FieldMaterial         = "material"
	FieldFinish           = "finish"
	FieldTechnology       = "technology"
	FieldSizeMM           = "size_mm"
	FieldPackaging        = "packaging"
	FieldBadges           = "badges"
	FieldImages           = "images"
	FieldExtraText        = "extra_text"

	// FieldImagesBase64 carries inline uploads in request bodies. It is never stored.
	FieldImagesBase64 = "imagesBase64"
)

// attributeOrder is the on-disk order of the free-form descriptive fields.
// images sits between badges and extra_text.
var attributeOrder = []string{
	FieldPriceFrom,
	FieldMaterial,
	FieldFinish,
	FieldTechnology,
	FieldSizeMM,
	FieldPackaging,
	FieldBadges,
}

// Product represents a catalogue entry.
//
// Only the ID, the category slug and the image list are typed, because the
// catalogue logic reads them. Every other key, including the display fields,
// is held in Attributes as raw JSON so any value round-trips unchanged.
//
// ID and Category hold the value only when the stored key is a non-empty
// string. Anything else under those keys stays in Attributes and is written
// back as it was read.
type Product struct {
	ID         string
	Category   string
	Images     []string
	Attributes map[string]json.RawMessage
}

// PriceFrom returns the numeric starting price, if one is set.
func (p *Product) PriceFrom() (float64, bool) {
	raw, ok := p.Attributes[FieldPriceFrom]
	if !ok {
		return 0, false
	}
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return 0, false
	}
	return *v, true
}

// Attribute returns the raw JSON stored under key, or nil.
func (p *Product) Attribute(key string) json.RawMessage {
	return p.Attributes[key]
}

// StringAttribute returns the attribute under key when it is a JSON string.
func (p *Product) StringAttribute(key string) (string, bool) {
	raw, ok := p.Attributes[key]
	if !ok {
		return "", false
	}
	return decodeString(raw)
}

// SetAttribute stores value under key, marshalling it to JSON.
func (p *Product) SetAttribute(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode attribute %s: %w", key, err)
	}
	if p.Attributes == nil {
		p.Attributes = make(map[string]json.RawMessage)
	}
	p.Attributes[key] = raw
	return nil
}

// Fields flattens the product into a key/value document.
func (p Product) Fields() map[string]json.RawMessage {
	fields := make(map[string]json.RawMessage, len(p.Attributes)+3)
	for k, v := range p.Attributes {
		fields[k] = v
	}
	if p.ID != "" {
		fields[FieldID] = mustMarshal(p.ID)
	}
	if p.Category != "" {
		fields[FieldCategory] = mustMarshal(p.Category)
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	fields[FieldImages] = mustMarshal(images)
	return fields
}

// ProductFromFields builds a product from a key/value document. It accepts
// any document: values under the typed keys that are not non-empty strings
// are kept raw, and only the string entries of an images array are used.
// Inline uploads are dropped.
func ProductFromFields(fields map[string]json.RawMessage) Product {
	var p Product
	for k, v := range fields {
		switch k {
		case FieldImagesBase64:
			continue
		case FieldImages:
			p.Images, _ = StringElements(v)
			continue
		case FieldID, FieldCategory:
			if s, isString := decodeString(v); isString && s != "" {
				if k == FieldID {
					p.ID = s
				} else {
					p.Category = s
				}
				continue
			}
		}
		if p.Attributes == nil {
			p.Attributes = make(map[string]json.RawMessage)
		}
		p.Attributes[k] = append(json.RawMessage(nil), v...)
	}
	return p
}

// StringField inspects the value stored under key. present is false when
// the key is missing; isString is false when it holds anything other than a
// JSON string. A JSON null counts as present but not a string.
func StringField(fields map[string]json.RawMessage, key string) (s string, present, isString bool) {
	raw, present := fields[key]
	if !present {
		return "", false, false
	}
	s, isString = decodeString(raw)
	return s, true, isString
}

// StringElements decodes a JSON array and returns its string entries in
// order. ok is false when raw is not an array.
func StringElements(raw json.RawMessage) (elems []string, ok bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, false
	}
	elems = make([]string, 0, len(entries))
	for _, entry := range entries {
		if s, isString := decodeString(entry); isString {
			elems = append(elems, s)
		}
	}
	return elems, true
}

// decodeString reports whether raw is a JSON string and returns it.
func decodeString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}

// MarshalJSON writes known keys in a fixed order followed by any extra keys
// sorted lexically, so the catalogue file diffs cleanly.
func (p Product) MarshalJSON() ([]byte, error) {
	fields := p.Fields()

	order := []string{FieldID, FieldCategory, FieldCategoryName, FieldName, FieldShortDescription}
	order = append(order, attributeOrder...)
	order = append(order, FieldImages, FieldExtraText)

	known := make(map[string]struct{}, len(order))
	for _, k := range order {
		known[k] = struct{}{}
	}
	var extra []string
	for k := range fields {
		if _, ok := known[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, k := range order {
		v, ok := fields[k]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(mustMarshal(k))
		buf.WriteByte(':')
		if len(v) == 0 {
			buf.WriteString("null")
			continue
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a product document, keeping unknown keys as attributes.
func (p *Product) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*p = ProductFromFields(fields)
	return nil
}

// Category pairs a category slug with its human-readable label.
type Category struct {
	Slug string `json:"category"`
	Name string `json:"category_name"`
}

func mustMarshal(v interface{}) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		// strings and string slices always encode
		panic(err)
	}
	return raw
}
