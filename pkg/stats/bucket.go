// Package stats implements the small aggregations behind the dashboard
// charts: histogram bucketing, vector norms, coordinate-wise means and
// frequency counts. Everything here is pure and safe for concurrent use.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// MaxBins bounds the number of steps BucketizeFloat will walk. A tiny width
// over a wide range would otherwise loop for a very long time.
const MaxBins = 100_000

var (
	// ErrInvalidWidth is returned for a zero, negative or non-finite bin width.
	ErrInvalidWidth = errors.New("stats: bin width must be positive and finite")
	// ErrTooManyBins is returned when the value range needs more than MaxBins bins.
	ErrTooManyBins = errors.New("stats: value range needs too many bins")
)

// Bucket is one histogram bin. Interval is the display label and Count the
// number of values that fell into the bin.
type Bucket struct {
	Interval string `json:"interval"`
	Count    int    `json:"count"`
}

// Bucketize groups integers into contiguous, inclusive bins of the given width
// starting at floor(min/width)*width. Bin k covers [start, start+width-1] and is
// labeled "start-end". Empty bins are omitted; the rest are returned in
// ascending order. An empty input yields no buckets.
func Bucketize(values []int, width int) ([]Bucket, error) {
	if width <= 0 {
		return nil, ErrInvalidWidth
	}
	if len(values) == 0 {
		return nil, nil
	}

	counts := make(map[int]int)
	for _, v := range values {
		counts[floorDiv(v, width)]++
	}

	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	buckets := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		start := k * width
		end := start + width - 1
		buckets = append(buckets, Bucket{
			Interval: strconv.Itoa(start) + "-" + strconv.Itoa(end),
			Count:    counts[k],
		})
	}
	return buckets, nil
}

// BucketizeFloat groups floats into half-open bins [start, start+width).
// Bin edges are produced by repeated addition from floor(min/width)*width
// while start <= max, so each value lands in exactly one bin. Labels use two
// decimals joined by an en dash, e.g. "0.10–0.20". Empty bins are omitted.
// NaN and infinite values are ignored.
func BucketizeFloat(values []float64, width float64) ([]Bucket, error) {
	if !(width > 0) || math.IsInf(width, 0) {
		return nil, ErrInvalidWidth
	}

	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sorted = append(sorted, v)
	}
	if len(sorted) == 0 {
		return nil, nil
	}
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if (hi-lo)/width > MaxBins {
		return nil, fmt.Errorf("%w: range %g..%g at width %g", ErrTooManyBins, lo, hi, width)
	}

	var buckets []Bucket
	i, steps := 0, 0
	for start := math.Floor(lo/width) * width; start <= hi; start += width {
		end := start + width
		if steps++; steps > MaxBins || end <= start {
			return nil, fmt.Errorf("%w: width %g is below the precision of %g", ErrTooManyBins, width, start)
		}
		// Values are consumed in order, so everything below end belongs here.
		count := 0
		for i < len(sorted) && sorted[i] < end {
			count++
			i++
		}
		if count > 0 {
			buckets = append(buckets, Bucket{
				Interval: formatEdge(start) + "–" + formatEdge(end),
				Count:    count,
			})
		}
	}
	return buckets, nil
}

// Total sums the counts of all buckets.
func Total(buckets []Bucket) int {
	n := 0
	for _, b := range buckets {
		n += b.Count
	}
	return n
}

// formatEdge renders a bin edge with two decimals. Accumulated drift can leave
// an edge a hair below zero, which must not print as "-0.00".
func formatEdge(x float64) string {
	s := strconv.FormatFloat(x, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
