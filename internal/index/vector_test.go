package index

import (
	"math"
	"testing"
)

func TestCosineSelfSimilarity(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0.3, -0.7, 2.1},
		{5, 5, 5, 5},
	}
	for _, v := range vectors {
		if sim := Cosine(v, v); math.Abs(sim-1) > 1e-9 {
			t.Errorf("Cosine(v, v) = %v, want 1", sim)
		}
	}
}

func TestCosineSymmetricAndBounded(t *testing.T) {
	pairs := [][2][]float32{
		{{1, 0}, {0, 1}},
		{{1, 2, 3}, {-3, -2, -1}},
		{{0.5, 0.5}, {1, -1}},
		{{2, 0, 1}, {2, 0, 1}},
	}
	for _, p := range pairs {
		ab := Cosine(p[0], p[1])
		ba := Cosine(p[1], p[0])
		if ab != ba {
			t.Errorf("Cosine not symmetric: %v vs %v", ab, ba)
		}
		if ab < -1-1e-9 || ab > 1+1e-9 {
			t.Errorf("Cosine out of bounds: %v", ab)
		}
	}
}

func TestCosineOppositeVectors(t *testing.T) {
	if sim := Cosine([]float32{1, 2}, []float32{-1, -2}); math.Abs(sim+1) > 1e-9 {
		t.Errorf("Cosine of opposite vectors = %v, want -1", sim)
	}
}

func TestCosineZeroVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	other := []float32{1, 2, 3}

	if sim := Cosine(zero, other); sim != 0 {
		t.Errorf("Cosine(zero, v) = %v, want 0", sim)
	}
	if sim := Cosine(other, zero); sim != 0 {
		t.Errorf("Cosine(v, zero) = %v, want 0", sim)
	}
	if sim := Cosine(zero, zero); sim != 0 {
		t.Errorf("Cosine(zero, zero) = %v, want 0", sim)
	}
}
