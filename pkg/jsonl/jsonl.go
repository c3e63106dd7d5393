// Package jsonl parses line-delimited JSON documents leniently.
//
// Each non-blank line is decoded independently. Lines that fail to decode,
// or that the caller's extractor rejects, are skipped and counted rather than
// failing the whole document.
package jsonl

import (
	"bytes"
	"encoding/json"
	"io"

	rderrors "github.com/jdziat/robodash/pkg/errors"
)

// Line is one decoded, non-blank line.
type Line struct {
	// Index is the position among non-blank lines, starting at 0. It is the
	// key for positional joins across documents.
	Index int
	// Value is the decoded JSON value. Numbers are json.Number.
	Value any
}

// Object returns the line as a JSON object, or nil if it is not one.
func (l Line) Object() map[string]any {
	m, _ := l.Value.(map[string]any)
	return m
}

// Result holds the values extracted from a document.
type Result[T any] struct {
	Values []T
	// Lines holds the Line.Index each value came from, parallel to Values.
	Lines []int
	// Skipped counts non-blank lines that were malformed or rejected.
	Skipped int
}

// Len returns the number of extracted values.
func (r Result[T]) Len() int { return len(r.Values) }

// Err returns an *errors.EmptyResultError naming what when nothing was
// extracted, and nil otherwise.
func (r Result[T]) Err(what string) error {
	if len(r.Values) > 0 {
		return nil
	}
	return &rderrors.EmptyResultError{What: what, Skipped: r.Skipped}
}

// Collect decodes data line by line and keeps the values for which extract
// returns true. Both "\n" and "\r\n" line endings are accepted.
func Collect[T any](data []byte, extract func(Line) (T, bool)) Result[T] {
	var res Result[T]
	index := 0
	for _, raw := range bytes.Split(data, []byte("\n")) {
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}
		idx := index
		index++

		value, ok := decode(line)
		if !ok {
			res.Skipped++
			continue
		}
		v, ok := extract(Line{Index: idx, Value: value})
		if !ok {
			res.Skipped++
			continue
		}
		res.Values = append(res.Values, v)
		res.Lines = append(res.Lines, idx)
	}
	return res
}

// Lines decodes every non-blank line and returns them along with the count
// of malformed lines.
func Lines(data []byte) ([]Line, int) {
	res := Collect(data, func(l Line) (Line, bool) { return l, true })
	return res.Values, res.Skipped
}

func decode(line []byte) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	// Trailing garbage after the first value makes the line malformed.
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return v, true
}
