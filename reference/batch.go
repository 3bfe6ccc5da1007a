package reference

import (
	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/qfunction"
)

func gather(src []float64, i, stride, n int) []float64 {
	v := make([]float64, n)
	for k := range v {
		v[k] = src[i+k*stride]
	}
	return v
}

// MixedMassBatch evaluates a mixed mass configuration point by point and
// returns the qdata buffer the quadrature function should produce.
func MixedMassBatch(ctx qfunction.MixedMassContext, q int, in [][]float64) ([]float64, error) {
	s := ctx.Shape
	c, j, qw := []float64(nil), in[0], in[1]
	if ctx.Kind != qfunction.ConstScalar {
		c, j, qw = in[0], in[1], in[2]
	}
	size := ctx.Layout.Size(s.Ref)
	qd := make([]float64, size*q)
	for i := 0; i < q; i++ {
		jac := Jacobian(s, gather(j, i, q, s.Components()))
		cm := Coefficient(coeff.RankScalar, s.Space, []float64{ctx.Coeff})
		switch ctx.Kind {
		case qfunction.QuadScalar:
			cm = Coefficient(coeff.RankScalar, s.Space, gather(c, i, q, 1))
		case qfunction.QuadVector:
			cm = Coefficient(coeff.RankVector, s.Space, gather(c, i, q, s.Space))
		case qfunction.QuadMatrix:
			cm = Coefficient(coeff.RankMatrix, s.Space, gather(c, i, q, s.SymSize()))
		}
		m, err := MixedMass(jac, cm, qw[i]/Det(jac))
		if err != nil {
			return nil, err
		}
		for k, v := range Flatten(ctx.Layout, m) {
			qd[k*q+i] = v
		}
	}
	return qd, nil
}

// VectorMassBatch evaluates an attribute-driven vector mass configuration
// point by point.
func VectorMassBatch(ctx qfunction.VectorMassContext, q int, in [][]float64) []float64 {
	s := ctx.Shape
	g, qw := in[0], in[1]
	attr, wdetJ, adjJt := g[:q], g[q:2*q], g[2*q:]
	first, second := ctx.Tables.First, ctx.Tables.Second
	size := s.PackedSize()
	if second != nil {
		size++
	}
	qd := make([]float64, size*q)
	for i := 0; i < q; i++ {
		a := Jacobian(s, gather(adjJt, i, q, s.Components()))
		b := Coefficient(first.Rank(), s.Space, first.Row(int(attr[i])))
		for k, v := range Packed(Congruence(a, b, wdetJ[i])) {
			qd[k*q+i] = v
		}
		if second != nil {
			c2 := second.Row(int(attr[i]))[0]
			qd[s.PackedSize()*q+i] = c2 * qw[i] * qw[i] / wdetJ[i]
		}
	}
	return qd
}
