// Package field reads typed values out of decoded JSON without trusting its
// shape.
//
// Paths are dot separated. A path matches both nested objects and flat keys
// that themselves contain dots, so "stats.next.reward.mean" finds
//
//	{"stats": {"next": {"reward": {"mean": 1}}}}
//	{"stats": {"next.reward": {"mean": 1}}}
//
// Every getter reports false instead of panicking when a value is missing or
// has the wrong type.
package field

import (
	"encoding/json"
	"math"
	"strings"
)

// Lookup resolves path in obj.
func Lookup(obj map[string]any, path string) (any, bool) {
	if obj == nil || path == "" {
		return nil, false
	}
	return lookup(obj, strings.Split(path, "."))
}

func lookup(obj map[string]any, parts []string) (any, bool) {
	for i := 1; i <= len(parts); i++ {
		v, ok := obj[strings.Join(parts[:i], ".")]
		if !ok {
			continue
		}
		if i == len(parts) {
			return v, true
		}
		if child, ok := v.(map[string]any); ok {
			if found, ok := lookup(child, parts[i:]); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// Number returns the number at path.
func Number(obj map[string]any, path string) (float64, bool) {
	v, ok := Lookup(obj, path)
	if !ok {
		return 0, false
	}
	return AsNumber(v)
}

// Scalar returns the number at path, also accepting a one-element numeric
// array such as [0.5].
func Scalar(obj map[string]any, path string) (float64, bool) {
	v, ok := Lookup(obj, path)
	if !ok {
		return 0, false
	}
	if f, ok := AsNumber(v); ok {
		return f, true
	}
	if vec, ok := AsVector(v); ok && len(vec) == 1 {
		return vec[0], true
	}
	return 0, false
}

// Int returns the number at path if it is integral.
func Int(obj map[string]any, path string) (int, bool) {
	f, ok := Number(obj, path)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int(f), true
}

// String returns the string at path.
func String(obj map[string]any, path string) (string, bool) {
	v, ok := Lookup(obj, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Vector returns the numeric array at path. Any non-numeric element makes
// the whole array unusable.
func Vector(obj map[string]any, path string) ([]float64, bool) {
	v, ok := Lookup(obj, path)
	if !ok {
		return nil, false
	}
	return AsVector(v)
}

// Strings returns the string elements of the array at path. Non-string
// elements are dropped.
func Strings(obj map[string]any, path string) ([]string, bool) {
	v, ok := Lookup(obj, path)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// Len returns the length of the array at path.
func Len(obj map[string]any, path string) (int, bool) {
	v, ok := Lookup(obj, path)
	if !ok {
		return 0, false
	}
	arr, ok := v.([]any)
	if !ok {
		return 0, false
	}
	return len(arr), true
}

// Object returns the object at path.
func Object(obj map[string]any, path string) (map[string]any, bool) {
	v, ok := Lookup(obj, path)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// First tries each path in order with get and returns the first hit.
func First[T any](obj map[string]any, paths []string, get func(map[string]any, string) (T, bool)) (T, bool) {
	for _, p := range paths {
		if v, ok := get(obj, p); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// AsNumber converts a decoded JSON number to float64. It accepts json.Number
// as well as the native numeric types produced by other decoders.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// AsVector converts a decoded JSON array of numbers to []float64. A single
// nested level such as [[1,2,3]] is flattened, which is how some writers
// store one-row statistics.
func AsVector(v any) ([]float64, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	if len(arr) == 1 {
		if inner, ok := arr[0].([]any); ok {
			arr = inner
		}
	}
	out := make([]float64, len(arr))
	for i, e := range arr {
		f, ok := AsNumber(e)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
