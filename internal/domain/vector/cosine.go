// Package vector holds the similarity math used by ranking.
package vector

import "math"

// Cosine computes the cosine similarity of two vectors, accumulating in
// float64 so a few thousand float32 dimensions do not lose precision.
// ok is false when the vectors differ in length or either has zero
// magnitude; that is a skip signal for the caller, not an error. Inputs
// are read-only.
func Cosine(a, b []float32) (score float64, ok bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, false
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
