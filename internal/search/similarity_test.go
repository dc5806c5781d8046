package search

import (
	"math"
	"testing"
)

// TestCosineSimilarity_LengthMismatch verifies that comparing vectors of
// different lengths is a hard error, whatever the lengths.
func TestCosineSimilarity_LengthMismatch(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
	}{
		{"short vs long", []float64{1, 2}, []float64{1, 2, 3}},
		{"empty vs one", []float64{}, []float64{1}},
		{"long vs short", []float64{1, 2, 3, 4}, []float64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CosineSimilarity(tt.a, tt.b); err == nil {
				t.Errorf("expected error for lengths %d vs %d", len(tt.a), len(tt.b))
			}
		})
	}
}

// TestCosineSimilarity_ZeroNorm verifies the degenerate-case policy: a
// zero vector compares as 0, not as an error.
func TestCosineSimilarity_ZeroNorm(t *testing.T) {
	zero := []float64{0, 0, 0}
	v := []float64{1, 2, 3}

	got, err := CosineSimilarity(zero, v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0 for zero-norm input, got %v", got)
	}

	got, err = CosineSimilarity(zero, zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0 for two zero vectors, got %v", got)
	}
}

// TestCosineSimilarity_Identity verifies self-similarity is 1 and that
// the measure is symmetric.
func TestCosineSimilarity_Identity(t *testing.T) {
	a := []float64{0.5, 0.1, 0.9, 0}
	b := []float64{0.2, 0.7, 0.3, 1}

	self, err := CosineSimilarity(a, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(self-1) > 1e-9 {
		t.Errorf("self similarity = %v, want 1", self)
	}

	ab, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := CosineSimilarity(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("similarity not symmetric: %v vs %v", ab, ba)
	}
}

// TestSimpleEmbedding verifies dimensionality, normalization, and the
// zero vector for token-free text.
func TestSimpleEmbedding(t *testing.T) {
	vec := SimpleEmbedding("a dragon's spell over the mountain")
	if len(vec) != EmbeddingDims {
		t.Fatalf("embedding has %d dims, want %d", len(vec), EmbeddingDims)
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if math.Abs(norm-1) > 1e-9 {
		t.Errorf("embedding norm^2 = %v, want 1", norm)
	}

	// Only tokens of length <= 2 means no tokens at all.
	empty := SimpleEmbedding("a an it to")
	for i, v := range empty {
		if v != 0 {
			t.Errorf("bucket %d = %v, want zero vector for short-token text", i, v)
			break
		}
	}
}

// TestTokenize verifies lowercasing, splitting, and short-token dropping.
func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"mixed case and punctuation", "The Dragon's Spell!", []string{"the", "dragon", "spell"}},
		{"short tokens dropped", "a to of magic", []string{"magic"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
