// Copyright (c) 2025-present deep.rent GmbH (https://deep.rent)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package document implements an ordered, type-checked JSON object used as
// the in-memory representation of a JOSE header or claim set. It is the
// shared engine behind both the JWT header and payload: field access is
// typed (string, int64, bool) with explicit error returns, mutation never
// silently overwrites an existing key, and serialization is deterministic
// (object members always sort by key) so that signed bytes are reproducible.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/deep-rent/jose"
)

// Document is a mutable, JSON-object-shaped bag of claims or header
// parameters. The zero value is not usable; construct one with New or
// Parse. A Document is not safe for concurrent use without external
// synchronization.
type Document struct {
	fields map[string]any
}

// New returns an empty Document.
func New() *Document {
	return &Document{fields: make(map[string]any)}
}

// Parse decodes a JSON object into a Document. Numbers without a
// fractional part or exponent are preserved as int64; all other values
// retain their natural Go representation (string, bool, float64, nested
// map/slice for objects and arrays, or nil).
func Parse(data []byte) (*Document, error) {
	fields, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	return &Document{fields: fields}, nil
}

// decodeObject decodes a JSON object preserving integer precision for
// top-level numeric members. encoding/json's Decoder.UseNumber is the
// standard library's own mechanism for deferring the int/float decision;
// no third-party decoder in the reference corpus exposes this more
// directly, so it is used here rather than the project's usual
// encoding/json/v2 import (see DESIGN.md).
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", jose.ErrParseError, err)
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = normalize(v)
	}
	return out, nil
}

// normalize converts json.Number leaves (including those nested inside
// maps and slices produced by the decoder) into int64 or float64.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}

// AddString adds a string-valued field. It returns jose.ErrInvalid if key
// or value is empty, or jose.ErrAlreadyExists if key is already present.
func (d *Document) AddString(key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", jose.ErrInvalid)
	}
	if value == "" {
		return fmt.Errorf("%w: empty string value for %q", jose.ErrInvalid, key)
	}
	if _, ok := d.fields[key]; ok {
		return fmt.Errorf("%w: %q", jose.ErrAlreadyExists, key)
	}
	d.fields[key] = value
	return nil
}

// AddInt adds an int64-valued field. It returns jose.ErrInvalid if key is
// empty, or jose.ErrAlreadyExists if key is already present.
func (d *Document) AddInt(key string, value int64) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", jose.ErrInvalid)
	}
	if _, ok := d.fields[key]; ok {
		return fmt.Errorf("%w: %q", jose.ErrAlreadyExists, key)
	}
	d.fields[key] = value
	return nil
}

// AddBool adds a bool-valued field. It returns jose.ErrInvalid if key is
// empty, or jose.ErrAlreadyExists if key is already present.
func (d *Document) AddBool(key string, value bool) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", jose.ErrInvalid)
	}
	if _, ok := d.fields[key]; ok {
		return fmt.Errorf("%w: %q", jose.ErrAlreadyExists, key)
	}
	d.fields[key] = value
	return nil
}

// Set adds a field holding an arbitrary JSON-marshalable value (e.g. a
// string slice or nested object). It exists for callers that need to
// populate array- or object-valued members; the typed Add methods remain
// the primary API for scalar claims. It observes the same non-overwrite
// and empty-key rules as AddString/AddInt/AddBool.
func (d *Document) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", jose.ErrInvalid)
	}
	if _, ok := d.fields[key]; ok {
		return fmt.Errorf("%w: %q", jose.ErrAlreadyExists, key)
	}
	d.fields[key] = value
	return nil
}

// AddJSON merges the top-level members of a JSON object into the
// document. Existing keys are left untouched; only keys not already
// present are added. It returns jose.ErrParseError if text is not a valid
// JSON object.
func (d *Document) AddJSON(text string) error {
	fields, err := decodeObject([]byte(text))
	if err != nil {
		return err
	}
	for k, v := range fields {
		if _, exists := d.fields[k]; !exists {
			d.fields[k] = v
		}
	}
	return nil
}

// Delete removes a single field. If key is empty, every field is removed.
// Deleting a key that is not present is not an error.
func (d *Document) Delete(key string) {
	if key == "" {
		d.fields = make(map[string]any)
		return
	}
	delete(d.fields, key)
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.fields[key]
	return ok
}

// GetString returns the string stored at key. It returns jose.ErrNotFound
// if key is absent, or jose.ErrWrongType if the stored value is not a
// string.
func (d *Document) GetString(key string) (string, error) {
	v, ok := d.fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", jose.ErrNotFound, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a string", jose.ErrWrongType, key)
	}
	return s, nil
}

// GetInt returns the int64 stored at key. It returns jose.ErrNotFound if
// key is absent, or jose.ErrWrongType if the stored value is not an
// integer.
func (d *Document) GetInt(key string) (int64, error) {
	v, ok := d.fields[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", jose.ErrNotFound, key)
	}
	i, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not an integer", jose.ErrWrongType, key)
	}
	return i, nil
}

// GetBool returns the bool stored at key. It returns jose.ErrNotFound if
// key is absent, or jose.ErrWrongType if the stored value is not a bool.
func (d *Document) GetBool(key string) (bool, error) {
	v, ok := d.fields[key]
	if !ok {
		return false, fmt.Errorf("%w: %q", jose.ErrNotFound, key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q is not a bool", jose.ErrWrongType, key)
	}
	return b, nil
}

// Get returns the raw value stored at key, in whatever Go representation
// decodeObject or the typed Add methods left it in.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.fields[key]
	return v, ok
}

// GetJSON returns the compact JSON serialization of the value at key. If
// key is empty, it returns the serialization of the whole document.
func (d *Document) GetJSON(key string) (string, error) {
	if key == "" {
		return d.Serialize(false)
	}
	v, ok := d.fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", jose.ErrNotFound, key)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", jose.ErrParseError, err)
	}
	return string(b), nil
}

// Serialize renders the document as JSON with object members sorted
// alphabetically by key, guaranteeing that two documents with the same
// fields always produce byte-identical output regardless of insertion
// order. When pretty is true, the result is indented with four spaces per
// nesting level and wrapped in leading/trailing newlines.
func (d *Document) Serialize(pretty bool) (string, error) {
	// encoding/json sorts map keys alphabetically when marshaling a Go
	// map, which gives the deterministic ordering required here for free.
	compact, err := json.Marshal(d.fields)
	if err != nil {
		return "", fmt.Errorf("%w: %v", jose.ErrParseError, err)
	}
	if !pretty {
		return string(compact), nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "    "); err != nil {
		return "", fmt.Errorf("%w: %v", jose.ErrParseError, err)
	}
	return "\n" + buf.String() + "\n", nil
}

// Len returns the number of top-level fields.
func (d *Document) Len() int {
	return len(d.fields)
}
