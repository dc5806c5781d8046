// Package search implements the catalog search core: keyword scoring,
// tag enrichment with heuristic fallback, AI re-ranking, and the
// orchestrator that composes them.
package search

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// EmbeddingDims is the fixed dimensionality of the hashed term-frequency
// embedding.
const EmbeddingDims = 100

// nonWord splits text into tokens on runs of non-word characters.
var nonWord = regexp.MustCompile(`\W+`)

// CosineSimilarity returns the cosine of the angle between two equal-length
// vectors. A length mismatch is a programming bug and returns a hard error;
// callers must not suppress it. A zero-norm input yields 0 rather than an
// error, a deliberate degenerate-case policy to keep empty documents
// comparable.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine similarity: vector length mismatch (%d vs %d)", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// SimpleEmbedding maps text to an L2-normalized bag-of-hashed-terms vector
// of EmbeddingDims buckets. Tokens of length <= 2 are discarded; each
// surviving token is hashed by summing its byte values modulo the bucket
// count. Text producing no tokens returns the zero vector.
//
// This is a deliberately crude fallback, not a learned representation; the
// primary ranking path never depends on it.
func SimpleEmbedding(text string) []float64 {
	vec := make([]float64, EmbeddingDims)

	for _, token := range Tokenize(text) {
		bucket := 0
		for _, c := range token {
			bucket += int(c)
		}
		vec[bucket%EmbeddingDims]++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// Tokenize lower-cases text, splits on non-word boundaries, and drops
// tokens of length <= 2. Shared by the embedding generator and the keyword
// scorer so both see identical terms.
func Tokenize(text string) []string {
	parts := nonWord.Split(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) > 2 {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
