// Package metadoc reads a dataset's metadata document (meta/info.json).
//
// The document has an open schema. It is kept as a decoded map with numbers
// as json.Number, so printing it again loses nothing, and accessors read the
// fields the dashboard knows about without assuming the rest.
package metadoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jdziat/robodash/pkg/field"
)

// Well-known keys.
const (
	KeyVersion  = "codebase_version"
	KeySplits   = "splits"
	KeyFeatures = "features"
)

// Document is a decoded metadata document.
type Document map[string]any

// Parse decodes data as a JSON object.
func Parse(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode metadata: trailing data after object")
	}
	if doc == nil {
		return nil, fmt.Errorf("decode metadata: document is null")
	}
	return doc, nil
}

// Version returns the codebase version tag, or "" when absent.
func (d Document) Version() string {
	s, _ := field.String(d, KeyVersion)
	return s
}

// Has reports whether key is present, even with a null value.
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Int returns the integral number at path.
func (d Document) Int(path string) (int, bool) { return field.Int(d, path) }

// Float returns the number at path.
func (d Document) Float(path string) (float64, bool) { return field.Number(d, path) }

// String returns the string at path.
func (d Document) String(path string) (string, bool) { return field.String(d, path) }

// Split is one entry of the splits object, e.g. {"train": "0:50"}.
type Split struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Splits returns the dataset splits sorted by name.
func (d Document) Splits() []Split {
	obj, ok := field.Object(d, KeySplits)
	if !ok {
		return nil
	}
	out := make([]Split, 0, len(obj))
	for _, name := range sortedKeys(obj) {
		out = append(out, Split{Name: name, Value: Text(obj[name])})
	}
	return out
}

// Feature describes one recorded signal in the features object.
type Feature struct {
	Name        string   `json:"name"`
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape,omitempty"`
	Names       []string `json:"names,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Features returns the feature schema sorted by name. Entries that are not
// objects are reported with an empty dtype.
func (d Document) Features() []Feature {
	obj, ok := field.Object(d, KeyFeatures)
	if !ok {
		return nil
	}
	out := make([]Feature, 0, len(obj))
	for _, name := range sortedKeys(obj) {
		f := Feature{Name: name}
		if def, ok := obj[name].(map[string]any); ok {
			f.DType, _ = field.String(def, "dtype")
			f.Description, _ = field.String(def, "description")
			if shape, ok := field.Vector(def, "shape"); ok {
				for _, n := range shape {
					f.Shape = append(f.Shape, int(n))
				}
			}
			f.Names, _ = field.Strings(def, "names")
		}
		out = append(out, f)
	}
	return out
}

// Pretty returns the document as JSON indented with two spaces. HTML
// characters are not escaped, so the output matches the source text.
func (d Document) Pretty() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any(d)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Text renders a decoded JSON value for display: strings as-is, scalars in
// their JSON form and composites as indented JSON.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
