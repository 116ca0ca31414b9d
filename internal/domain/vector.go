package domain

import "math"

// Vector is a fixed-length embedding vector.
type Vector []float32

// Space identifies the embedding space a vector lives in.
// Vectors from different spaces are never compared to each other.
type Space string

const (
	// SpaceText is the primary text-semantics space.
	SpaceText Space = "text"
	// SpaceImage is the cross-modal (joint image/text) space.
	SpaceImage Space = "image"
)

// cosineEpsilon guards the denominator against all-zero vectors.
const cosineEpsilon = 1e-8

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Degenerate (zero or mismatched-length) inputs score 0.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + cosineEpsilon)
}
