// Package reference evaluates the quadrature data formulas with generic dense
// linear algebra. It allocates and is slow; it exists to check the closed-form
// kernels and to inspect single points from the command line.
package reference

import (
	"fmt"
	"math"

	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/geom"
	"github.com/notargets/QFKernel/kernels"
	"gonum.org/v1/gonum/mat"
)

// Jacobian builds the Space x Ref matrix stored in a local geometric factor
// array (entry r*Space+c is J(c, r)).
func Jacobian(s geom.Shape, local []float64) *mat.Dense {
	j := mat.NewDense(s.Space, s.Ref, nil)
	for r := 0; r < s.Ref; r++ {
		for c := 0; c < s.Space; c++ {
			j.Set(c, r, local[r*s.Space+c])
		}
	}
	return j
}

// Local is the inverse of Jacobian.
func Local(j mat.Matrix) []float64 {
	space, ref := j.Dims()
	local := make([]float64, space*ref)
	for r := 0; r < ref; r++ {
		for c := 0; c < space; c++ {
			local[r*space+c] = j.At(c, r)
		}
	}
	return local
}

// Coefficient expands stored coefficient values of a rank into a full
// symmetric dim x dim matrix.
func Coefficient(rank coeff.Rank, dim int, values []float64) *mat.SymDense {
	c := mat.NewSymDense(dim, nil)
	switch rank {
	case coeff.RankScalar:
		for i := 0; i < dim; i++ {
			c.SetSym(i, i, values[0])
		}
	case coeff.RankVector:
		for i := 0; i < dim; i++ {
			c.SetSym(i, i, values[i])
		}
	case coeff.RankMatrix:
		for i := 0; i < dim; i++ {
			for j := i; j < dim; j++ {
				c.SetSym(i, j, values[coeff.PackedIndex(dim, i, j)])
			}
		}
	}
	return c
}

// Det is det(J) for square J and sqrt(det(J^T J)) otherwise.
func Det(j mat.Matrix) float64 {
	r, c := j.Dims()
	if r == c {
		return mat.Det(j)
	}
	var g mat.Dense
	g.Mul(j.T(), j)
	return math.Sqrt(mat.Det(&g))
}

// AdjT returns adj(J)^T = det(J) J (J^T J)^-1, which is the cofactor matrix
// for square J.
func AdjT(j mat.Matrix) (*mat.Dense, error) {
	var g, ginv mat.Dense
	g.Mul(j.T(), j)
	if err := ginv.Inverse(&g); err != nil {
		return nil, fmt.Errorf("metric tensor inverse: %w", err)
	}
	var adjt mat.Dense
	adjt.Mul(j, &ginv)
	adjt.Scale(Det(j), &adjt)
	return &adjt, nil
}

// MixedMass returns w J^T C adj(J)^T.
func MixedMass(j mat.Matrix, c mat.Symmetric, w float64) (*mat.Dense, error) {
	adjt, err := AdjT(j)
	if err != nil {
		return nil, err
	}
	var ca, m mat.Dense
	ca.Mul(c, adjt)
	m.Mul(j.T(), &ca)
	m.Scale(w, &m)
	return &m, nil
}

// Congruence returns s A^T B A.
func Congruence(a mat.Matrix, b mat.Symmetric, s float64) *mat.Dense {
	var ba, m mat.Dense
	ba.Mul(b, a)
	m.Mul(a.T(), &ba)
	m.Scale(s, &m)
	return &m
}

// Flatten lays a square block out the way the kernels store it for l.
func Flatten(l kernels.Layout, m mat.Matrix) []float64 {
	n, _ := m.Dims()
	out := make([]float64, 0, l.Size(n))
	switch l {
	case kernels.Dense:
		for k := 0; k < n; k++ {
			for a := 0; a < n; a++ {
				out = append(out, m.At(a, k))
			}
		}
	case kernels.Transposed:
		for k := 0; k < n; k++ {
			for a := 0; a < n; a++ {
				out = append(out, m.At(k, a))
			}
		}
	case kernels.Symmetric:
		out = append(out, Packed(m)...)
	}
	return out
}

// Packed returns the row-major upper triangle of a square matrix.
func Packed(m mat.Matrix) []float64 {
	n, _ := m.Dims()
	out := make([]float64, 0, n*(n+1)/2)
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			out = append(out, m.At(a, b))
		}
	}
	return out
}
