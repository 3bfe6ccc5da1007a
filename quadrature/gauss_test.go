package quadrature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestGaussLegendre_TwoPoints(t *testing.T) {
	x, w, err := GaussLegendre(2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-1 / math.Sqrt(3), 1 / math.Sqrt(3)}, x, 1e-14)
	assert.InDeltaSlice(t, []float64{1, 1}, w, 1e-14)
}

func TestGaussLegendre_Exactness(t *testing.T) {
	for n := 1; n <= 6; n++ {
		x, w, err := GaussLegendre(n)
		require.NoError(t, err)
		for deg := 0; deg <= 2*n-1; deg++ {
			var sum float64
			for i := range x {
				sum += w[i] * math.Pow(x[i], float64(deg))
			}
			want := 0.0
			if deg%2 == 0 {
				want = 2 / float64(deg+1)
			}
			assert.InDelta(t, want, sum, 1e-13, "n=%d deg=%d", n, deg)
		}
	}
}

func TestGaussJacobi_WeightIntegral(t *testing.T) {
	_, w, err := GaussJacobi(1, 0, 4)
	require.NoError(t, err)
	// Integral of (1-x) over [-1, 1]
	assert.InDelta(t, 2, floats.Sum(w), 1e-13)

	_, _, err = GaussJacobi(0, 0, 0)
	assert.Error(t, err)
}

func TestTensorRule(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		r, err := NewTensorRule(dim, 3)
		require.NoError(t, err)
		assert.Equal(t, int(math.Pow(3, float64(dim))), r.NumPoints())
		assert.InDelta(t, math.Pow(2, float64(dim)), floats.Sum(r.Weights), 1e-13)

		// Integral of x0^2 x_{dim-1}^2 over the cube
		var sum float64
		for i := 0; i < r.NumPoints(); i++ {
			p := r.Point(i)
			sum += r.Weights[i] * p[0] * p[0] * p[dim-1] * p[dim-1]
		}
		want := 2.0 / 5 * math.Pow(2, float64(dim-1))
		if dim > 1 {
			want = 4.0 / 9 * math.Pow(2, float64(dim-2))
		}
		assert.InDelta(t, want, sum, 1e-13, "dim %d", dim)
	}

	_, err := NewTensorRule(4, 2)
	assert.Error(t, err)
}
