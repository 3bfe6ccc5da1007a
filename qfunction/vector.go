package qfunction

import (
	"fmt"

	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/geom"
	"github.com/notargets/QFKernel/kernels"
)

// VectorMassContext configures an attribute-driven H(curl) or H(div) mass
// quadrature function. Tables.First holds the mass coefficient; the optional
// Tables.Second holds the scalar coefficient of the companion term (the
// curl-curl or div-div contribution in 2D).
type VectorMassContext struct {
	Shape  geom.Shape
	Tables coeff.Pair
}

// VectorMass reads a geometry block of attributes, wdetJ and adj(J)^T/det(J)
// and writes the packed block wdetJ * adjJt^T B adjJt at every point. When a
// second table is present, c2 * qw^2 / wdetJ follows the packed block.
type VectorMass struct {
	ctx   VectorMassContext
	apply vectorFunc
}

type vectorKey struct {
	shape geom.Shape
	rank  coeff.Rank
}

// vectorFunc runs points [lo, hi) of the primary block.
type vectorFunc func(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64)

// NewVectorMass selects the kernels for ctx.
func NewVectorMass(ctx VectorMassContext) (*VectorMass, error) {
	s := ctx.Shape
	if !s.Supported() {
		return nil, fmt.Errorf("vector mass shape %v: %w", s, geom.ErrUnsupportedShape)
	}
	first, second := ctx.Tables.First, ctx.Tables.Second
	if first == nil {
		return nil, fmt.Errorf("vector mass needs a first coefficient table: %w", ErrUnsupported)
	}
	if first.Rank() != coeff.RankScalar && first.Dim() != s.Space {
		return nil, fmt.Errorf("vector mass %v: %s table of dimension %d: %w",
			s, first.Rank(), first.Dim(), ErrUnsupported)
	}
	if second != nil && second.Rank() != coeff.RankScalar {
		return nil, fmt.Errorf("vector mass second table must be scalar, got %s: %w",
			second.Rank(), ErrUnsupported)
	}
	fn, ok := vectorTable[vectorKey{shape: s, rank: first.Rank()}]
	if !ok {
		return nil, fmt.Errorf("vector mass %v %s: %w", s, first.Rank(), ErrUnsupported)
	}
	return &VectorMass{ctx: ctx, apply: fn}, nil
}

func (m *VectorMass) Context() VectorMassContext { return m.ctx }

func (m *VectorMass) Inputs() []Field {
	return []Field{
		{Name: "geom", Size: 2 + m.ctx.Shape.Components()},
		{Name: "qw", Size: 1},
	}
}

func (m *VectorMass) Outputs() []Field {
	n := m.ctx.Shape.PackedSize()
	if m.ctx.Tables.Second != nil {
		n++
	}
	return []Field{{Name: "qdata", Size: n}}
}

func (m *VectorMass) Apply(q int, in, out [][]float64) {
	m.ApplyRange(q, 0, q, in, out)
}

func (m *VectorMass) ApplyRange(q, lo, hi int, in, out [][]float64) {
	g, qw, qd := in[0], in[1], out[0]
	attr, wdetJ, adjJt := g[:q], g[q:2*q], g[2*q:]
	m.apply(m.ctx.Tables.First, q, lo, hi, attr, wdetJ, adjJt, qd)
	if t := m.ctx.Tables.Second; t != nil {
		qd2 := qd[m.ctx.Shape.PackedSize()*q:]
		for i := lo; i < hi; i++ {
			c := float64(t.Scalar(int(attr[i])))
			qd2[i] = c * qw[i] * qw[i] / wdetJ[i]
		}
	}
}

var vectorTable = map[vectorKey]vectorFunc{
	// In 1D every rank stores a single value per material.
	{geom.Shape11, coeff.RankScalar}: vector11,
	{geom.Shape11, coeff.RankVector}: vector11,
	{geom.Shape11, coeff.RankMatrix}: vector11,

	{geom.Shape21, coeff.RankScalar}: func(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64) {
		vector21[coeff.Scalar](coeff.AttrScalar{Table: t, Attr: attr}, q, lo, hi, wdetJ, adjJt, qd)
	},
	{geom.Shape21, coeff.RankVector}: func(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64) {
		vector21[coeff.Diag2](coeff.AttrDiag2{Table: t, Attr: attr}, q, lo, hi, wdetJ, adjJt, qd)
	},
	{geom.Shape21, coeff.RankMatrix}: func(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64) {
		vector21[coeff.Sym2](coeff.AttrSym2{Table: t, Attr: attr}, q, lo, hi, wdetJ, adjJt, qd)
	},

	{geom.Shape22, coeff.RankScalar}: func(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64) {
		vector22[coeff.Scalar](coeff.AttrScalar{Table: t, Attr: attr}, q, lo, hi, wdetJ, adjJt, qd)
	},
	{geom.Shape22, coeff.RankVector}: func(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64) {
		vector22[coeff.Diag2](coeff.AttrDiag2{Table: t, Attr: attr}, q, lo, hi, wdetJ, adjJt, qd)
	},
	{geom.Shape22, coeff.RankMatrix}: func(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64) {
		vector22[coeff.Sym2](coeff.AttrSym2{Table: t, Attr: attr}, q, lo, hi, wdetJ, adjJt, qd)
	},

	{geom.Shape32, coeff.RankScalar}: func(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64) {
		vector32[coeff.Scalar](coeff.AttrScalar{Table: t, Attr: attr}, q, lo, hi, wdetJ, adjJt, qd)
	},
	{geom.Shape32, coeff.RankVector}: func(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64) {
		vector32[coeff.Diag3](coeff.AttrDiag3{Table: t, Attr: attr}, q, lo, hi, wdetJ, adjJt, qd)
	},
	{geom.Shape32, coeff.RankMatrix}: func(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64) {
		vector32[coeff.Sym3](coeff.AttrSym3{Table: t, Attr: attr}, q, lo, hi, wdetJ, adjJt, qd)
	},

	{geom.Shape33, coeff.RankScalar}: func(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64) {
		vector33[coeff.Scalar](coeff.AttrScalar{Table: t, Attr: attr}, q, lo, hi, wdetJ, adjJt, qd)
	},
	{geom.Shape33, coeff.RankVector}: func(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64) {
		vector33[coeff.Diag3](coeff.AttrDiag3{Table: t, Attr: attr}, q, lo, hi, wdetJ, adjJt, qd)
	},
	{geom.Shape33, coeff.RankMatrix}: func(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64) {
		vector33[coeff.Sym3](coeff.AttrSym3{Table: t, Attr: attr}, q, lo, hi, wdetJ, adjJt, qd)
	},
}

func vector11(t *coeff.Table, q, lo, hi int, attr, wdetJ, adjJt, qd []float64) {
	for i := lo; i < hi; i++ {
		a := geom.Unpack11(adjJt, i, q)
		kernels.StorePacked1(kernels.MultAtBA11(a, t.Scalar(int(attr[i]))), wdetJ[i], qd, i)
	}
}

func vector21[B coeff.Coeff2, S coeff.Source[B]](src S, q, lo, hi int, wdetJ, adjJt, qd []float64) {
	for i := lo; i < hi; i++ {
		a := geom.Unpack21(adjJt, i, q)
		kernels.StorePacked1(kernels.MultAtBA21(a, src.At(i)), wdetJ[i], qd, i)
	}
}

func vector22[B coeff.Coeff2, S coeff.Source[B]](src S, q, lo, hi int, wdetJ, adjJt, qd []float64) {
	for i := lo; i < hi; i++ {
		a := geom.Unpack22(adjJt, i, q)
		kernels.StorePacked2(kernels.MultAtBA22(a, src.At(i)), wdetJ[i], qd, i, q)
	}
}

func vector32[B coeff.Coeff3, S coeff.Source[B]](src S, q, lo, hi int, wdetJ, adjJt, qd []float64) {
	for i := lo; i < hi; i++ {
		a := geom.Unpack32(adjJt, i, q)
		kernels.StorePacked2(kernels.MultAtBA32(a, src.At(i)), wdetJ[i], qd, i, q)
	}
}

func vector33[B coeff.Coeff3, S coeff.Source[B]](src S, q, lo, hi int, wdetJ, adjJt, qd []float64) {
	for i := lo; i < hi; i++ {
		a := geom.Unpack33(adjJt, i, q)
		kernels.StorePacked3(kernels.MultAtBA33(a, src.At(i)), wdetJ[i], qd, i, q)
	}
}
