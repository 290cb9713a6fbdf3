package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSymmetric(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0.01}
	b := []float32{2.2, 0.7, -0.4, 1.9}
	assert.InDelta(t, Cosine(a, b), Cosine(b, a), 1e-12)
}

func TestCosineSelf(t *testing.T) {
	a := []float32{1.5, -2, 0.25}
	assert.InDelta(t, 1.0, Cosine(a, a), 1e-9)
}

func TestCosineZeroVector(t *testing.T) {
	zero := make([]float32, 4)
	x := []float32{1, 2, 3, 4}
	assert.Equal(t, 0.0, Cosine(zero, x))
	assert.Equal(t, 0.0, Cosine(x, zero))
	assert.Equal(t, 0.0, Cosine(zero, zero))
}

func TestCosineOrthogonalAndOpposite(t *testing.T) {
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-12)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(nil))
	assert.True(t, IsZero([]float32{0, 0, 0}))
	assert.False(t, IsZero([]float32{0, 1e-9, 0}))
}

func TestNorm(t *testing.T) {
	assert.InDelta(t, 5.0, Norm([]float32{3, 4}), 1e-12)
	assert.Equal(t, 0.0, Norm(nil))
}
