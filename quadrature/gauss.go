// Package quadrature supplies Gauss rules on the reference interval [-1, 1]
// and their tensor products, the qw input of the quadrature functions.
package quadrature

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// GaussJacobi returns the n points and weights of the Gauss rule for the
// weight (1-x)^alpha (1+x)^beta on [-1, 1]. The points are the eigenvalues of
// the symmetric Jacobi matrix of the recurrence, and each weight is the
// squared first component of its eigenvector times the integral of the
// weight function.
func GaussJacobi(alpha, beta float64, n int) (x, w []float64, err error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("gauss rule needs at least one point, got %d", n)
	}
	if n == 1 {
		return []float64{(beta - alpha) / (alpha + beta + 2)}, []float64{gamma0(alpha, beta)}, nil
	}

	jm := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		h := 2*float64(i) + alpha + beta
		if d := h * (h + 2); math.Abs(d) > 1e-15 {
			jm.SetSym(i, i, (beta*beta-alpha*alpha)/d)
		}
		if i+1 < n {
			k := float64(i + 1)
			jm.SetSym(i, i+1, 2/(h+2)*math.Sqrt(k*(k+alpha+beta)*(k+alpha)*(k+beta)/(h+1)/(h+3)))
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(jm, true) {
		return nil, nil, fmt.Errorf("gauss rule with %d points: eigen decomposition failed", n)
	}
	x = eig.Values(nil)
	var v mat.Dense
	eig.VectorsTo(&v)
	w = make([]float64, n)
	g := gamma0(alpha, beta)
	for i := range w {
		w[i] = v.At(0, i) * v.At(0, i) * g
	}
	return x, w, nil
}

// GaussLegendre is the n point Gauss rule for the unit weight.
func GaussLegendre(n int) (x, w []float64, err error) {
	return GaussJacobi(0, 0, n)
}

// gamma0 is the integral of (1-x)^alpha (1+x)^beta over [-1, 1].
func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1
	return math.Gamma(alpha+1) * math.Gamma(beta+1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

// Rule is a tensor product Gauss-Legendre rule on [-1, 1]^Dim. Coordinate d
// of point i is Points[d*NumPoints()+i], the same strided layout as the
// quadrature function inputs.
type Rule struct {
	Dim     int
	Points  []float64
	Weights []float64
}

// NewTensorRule builds the rule with n points per direction in dim
// dimensions, the first coordinate varying fastest.
func NewTensorRule(dim, n int) (*Rule, error) {
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("tensor rule dimension %d out of range", dim)
	}
	x, w, err := GaussLegendre(n)
	if err != nil {
		return nil, err
	}
	q := 1
	for d := 0; d < dim; d++ {
		q *= n
	}
	r := &Rule{Dim: dim, Points: make([]float64, dim*q), Weights: make([]float64, q)}
	for i := 0; i < q; i++ {
		r.Weights[i] = 1
		for d, rest := 0, i; d < dim; d, rest = d+1, rest/n {
			r.Points[d*q+i] = x[rest%n]
			r.Weights[i] *= w[rest%n]
		}
	}
	return r, nil
}

func (r *Rule) NumPoints() int { return len(r.Weights) }

// Point returns the coordinates of point i.
func (r *Rule) Point(i int) []float64 {
	p := make([]float64, r.Dim)
	for d := range p {
		p[d] = r.Points[d*r.NumPoints()+i]
	}
	return p
}
