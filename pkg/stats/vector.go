package stats

import "math"

// Magnitude returns the Euclidean norm of v. Dimensionality is not checked.
func Magnitude(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Magnitudes returns the norm of each vector.
func Magnitudes(vectors [][]float64) []float64 {
	out := make([]float64, len(vectors))
	for i, v := range vectors {
		out[i] = Magnitude(v)
	}
	return out
}

// MeanVector returns the coordinate-wise mean of vectors. The length of the
// first non-empty vector fixes the dimensionality; vectors of any other
// length are skipped and counted. It returns nil when nothing was averaged.
func MeanVector(vectors [][]float64) (mean []float64, skipped int) {
	var sum []float64
	n := 0
	for _, v := range vectors {
		if len(v) == 0 {
			skipped++
			continue
		}
		if sum == nil {
			sum = make([]float64, len(v))
		}
		if len(v) != len(sum) {
			skipped++
			continue
		}
		for i, x := range v {
			sum[i] += x
		}
		n++
	}
	if n == 0 {
		return nil, skipped
	}
	for i := range sum {
		sum[i] /= float64(n)
	}
	return sum, skipped
}

// TimeDeltas returns the differences between consecutive timestamps.
// Fewer than two timestamps yield no deltas.
func TimeDeltas(timestamps []float64) []float64 {
	if len(timestamps) < 2 {
		return nil
	}
	out := make([]float64, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		out[i-1] = timestamps[i] - timestamps[i-1]
	}
	return out
}
