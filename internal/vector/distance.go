// Package vector provides similarity scoring over embedding vectors.
package vector

import "math"

// CosineSimilarity computes the cosine similarity between two vectors.
// It returns 0 when the vectors differ in length or either has zero
// magnitude; a zero-valued embedding (recorded after a provider
// failure at index time) therefore never ranks above a real match.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2))
}
