package reference

import (
	"math/rand/v2"

	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/geom"
	"github.com/notargets/QFKernel/qfunction"
)

// RandomJacobian returns local geometric factors of a well-conditioned map of
// shape s: the canonical embedding of the reference space plus a
// perturbation of at most 0.3 per entry.
func RandomJacobian(rng *rand.Rand, s geom.Shape) []float64 {
	local := make([]float64, s.Components())
	for r := 0; r < s.Ref; r++ {
		for c := 0; c < s.Space; c++ {
			v := 0.3 * (2*rng.Float64() - 1)
			if c == r {
				v++
			}
			local[r*s.Space+c] = v
		}
	}
	return local
}

// RandomCoefficient returns the stored values of a symmetric positive
// definite coefficient of the given rank in dim space dimensions.
func RandomCoefficient(rng *rand.Rand, rank coeff.Rank, dim int) []float64 {
	switch rank {
	case coeff.RankVector:
		v := make([]float64, dim)
		for i := range v {
			v[i] = 1 + rng.Float64()
		}
		return v
	case coeff.RankMatrix:
		v := make([]float64, dim*(dim+1)/2)
		for i := 0; i < dim; i++ {
			for j := i; j < dim; j++ {
				if i == j {
					v[coeff.PackedIndex(dim, i, j)] = 2 + rng.Float64()
				} else {
					v[coeff.PackedIndex(dim, i, j)] = 0.3 * (2*rng.Float64() - 1)
				}
			}
		}
		return v
	}
	return []float64{1 + rng.Float64()}
}

// KindRank is the coefficient rank carried by a quadrature coefficient kind.
func KindRank(k qfunction.Kind) coeff.Rank {
	switch k {
	case qfunction.QuadVector:
		return coeff.RankVector
	case qfunction.QuadMatrix:
		return coeff.RankMatrix
	}
	return coeff.RankScalar
}

// strided lays out n values per point produced by gen for q points.
func strided(q, n int, gen func() []float64) []float64 {
	buf := make([]float64, n*q)
	for i := 0; i < q; i++ {
		for k, v := range gen() {
			buf[k*q+i] = v
		}
	}
	return buf
}

// MixedMassInputs returns random input buffers for a mixed mass
// configuration, in the order its quadrature function reports them.
func MixedMassInputs(rng *rand.Rand, ctx qfunction.MixedMassContext, q int) [][]float64 {
	s := ctx.Shape
	var in [][]float64
	if n := ctx.Kind.Components(s); n > 0 {
		rank := KindRank(ctx.Kind)
		in = append(in, strided(q, n, func() []float64 { return RandomCoefficient(rng, rank, s.Space) }))
	}
	return append(in,
		strided(q, s.Components(), func() []float64 { return RandomJacobian(rng, s) }),
		strided(q, 1, func() []float64 { return []float64{0.1 + rng.Float64()} }),
	)
}

// VectorMassCase returns a random vector mass configuration with three
// attributes over two materials, and matching input buffers.
func VectorMassCase(rng *rand.Rand, s geom.Shape, rank coeff.Rank, second bool, q int) (
	qfunction.VectorMassContext, [][]float64, error) {
	attrMat := []int{0, 1, 1}
	var values []float64
	for m := 0; m < 2; m++ {
		values = append(values, RandomCoefficient(rng, rank, s.Space)...)
	}
	var (
		first *coeff.Table
		err   error
	)
	switch rank {
	case coeff.RankVector:
		first, err = coeff.NewVectorTable(s.Space, attrMat, values)
	case coeff.RankMatrix:
		first, err = coeff.NewMatrixTable(s.Space, attrMat, values)
	default:
		first, err = coeff.NewScalarTable(attrMat, values)
	}
	if err != nil {
		return qfunction.VectorMassContext{}, nil, err
	}
	ctx := qfunction.VectorMassContext{Shape: s, Tables: coeff.Pair{First: first}}
	if second {
		ctx.Tables.Second, err = coeff.NewScalarTable(attrMat, []float64{0.5 + rng.Float64(), 0.5 + rng.Float64()})
		if err != nil {
			return qfunction.VectorMassContext{}, nil, err
		}
	}

	g := make([]float64, (2+s.Components())*q)
	for i := 0; i < q; i++ {
		g[i] = float64(1 + rng.IntN(len(attrMat)))
		g[q+i] = 0.1 + rng.Float64()
	}
	copy(g[2*q:], strided(q, s.Components(), func() []float64 { return RandomJacobian(rng, s) }))
	qw := strided(q, 1, func() []float64 { return []float64{0.1 + rng.Float64()} })
	return ctx, [][]float64{g, qw}, nil
}
