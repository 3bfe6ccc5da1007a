package qfunction

import (
	"fmt"

	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/geom"
	"github.com/notargets/QFKernel/kernels"
)

// MixedMassContext configures a mixed H(curl)-H(div) mass quadrature function.
// Layout Dense gives the H(curl)-H(div) data, Transposed the H(div)-H(curl)
// data and Symmetric the packed upper triangle when trial and test spaces
// coincide.
type MixedMassContext struct {
	Shape  geom.Shape
	Kind   Kind
	Layout kernels.Layout
	Coeff  float64 // used by ConstScalar only
}

// MixedMass computes qw / det(J) J^T C adj(J)^T at every point.
type MixedMass struct {
	ctx   MixedMassContext
	apply mixedFunc
}

// mixedFunc runs points [lo, hi). c is nil for a constant coefficient.
type mixedFunc func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64)

// NewMixedMass selects the kernels for ctx.
func NewMixedMass(ctx MixedMassContext) (*MixedMass, error) {
	if !ctx.Shape.Supported() {
		return nil, fmt.Errorf("mixed mass shape %v: %w", ctx.Shape, geom.ErrUnsupportedShape)
	}
	if ctx.Layout > kernels.Symmetric {
		return nil, fmt.Errorf("mixed mass layout %v: %w", ctx.Layout, ErrUnsupported)
	}
	fn, ok := mixedTable[Key{Shape: ctx.Shape, Kind: ctx.Kind}]
	if !ok {
		return nil, fmt.Errorf("mixed mass %v %v: %w", ctx.Shape, ctx.Kind, ErrUnsupported)
	}
	return &MixedMass{ctx: ctx, apply: fn}, nil
}

func (m *MixedMass) Context() MixedMassContext { return m.ctx }

func (m *MixedMass) Inputs() []Field {
	fields := make([]Field, 0, 3)
	if n := m.ctx.Kind.Components(m.ctx.Shape); n > 0 {
		fields = append(fields, Field{Name: "coeff", Size: n})
	}
	return append(fields,
		Field{Name: "J", Size: m.ctx.Shape.Components()},
		Field{Name: "qw", Size: 1},
	)
}

func (m *MixedMass) Outputs() []Field {
	return []Field{{Name: "qdata", Size: m.ctx.Layout.Size(m.ctx.Shape.Ref)}}
}

func (m *MixedMass) Apply(q int, in, out [][]float64) {
	m.ApplyRange(q, 0, q, in, out)
}

func (m *MixedMass) ApplyRange(q, lo, hi int, in, out [][]float64) {
	if m.ctx.Kind == ConstScalar {
		m.apply(&m.ctx, q, lo, hi, nil, in[0], in[1], out[0])
		return
	}
	m.apply(&m.ctx, q, lo, hi, in[0], in[1], in[2], out[0])
}

var mixedTable = map[Key]mixedFunc{
	{geom.Shape11, ConstScalar}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		kernels.Scale(qd[lo:hi], qw[lo:hi], ctx.Coeff)
	},
	{geom.Shape11, QuadScalar}: mixed11Quad,
	{geom.Shape11, QuadVector}: mixed11Quad,
	{geom.Shape11, QuadMatrix}: mixed11Quad,

	{geom.Shape21, ConstScalar}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed21[coeff.Scalar](coeff.Const[coeff.Scalar]{Value: coeff.Scalar(ctx.Coeff)}, q, lo, hi, j, qw, qd)
	},
	{geom.Shape21, QuadScalar}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed21[coeff.Scalar](coeff.QuadScalar{Data: c}, q, lo, hi, j, qw, qd)
	},
	{geom.Shape21, QuadVector}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed21[coeff.Diag2](coeff.QuadDiag2{Data: c, Stride: q}, q, lo, hi, j, qw, qd)
	},
	{geom.Shape21, QuadMatrix}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed21[coeff.Sym2](coeff.QuadSym2{Data: c, Stride: q}, q, lo, hi, j, qw, qd)
	},

	{geom.Shape22, ConstScalar}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed22[coeff.Scalar](coeff.Const[coeff.Scalar]{Value: coeff.Scalar(ctx.Coeff)}, ctx.Layout, q, lo, hi, j, qw, qd)
	},
	{geom.Shape22, QuadScalar}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed22[coeff.Scalar](coeff.QuadScalar{Data: c}, ctx.Layout, q, lo, hi, j, qw, qd)
	},
	{geom.Shape22, QuadVector}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed22[coeff.Diag2](coeff.QuadDiag2{Data: c, Stride: q}, ctx.Layout, q, lo, hi, j, qw, qd)
	},
	{geom.Shape22, QuadMatrix}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed22[coeff.Sym2](coeff.QuadSym2{Data: c, Stride: q}, ctx.Layout, q, lo, hi, j, qw, qd)
	},

	{geom.Shape32, ConstScalar}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed32[coeff.Scalar](coeff.Const[coeff.Scalar]{Value: coeff.Scalar(ctx.Coeff)}, ctx.Layout, q, lo, hi, j, qw, qd)
	},
	{geom.Shape32, QuadScalar}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed32[coeff.Scalar](coeff.QuadScalar{Data: c}, ctx.Layout, q, lo, hi, j, qw, qd)
	},
	{geom.Shape32, QuadVector}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed32[coeff.Diag3](coeff.QuadDiag3{Data: c, Stride: q}, ctx.Layout, q, lo, hi, j, qw, qd)
	},
	{geom.Shape32, QuadMatrix}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed32[coeff.Sym3](coeff.QuadSym3{Data: c, Stride: q}, ctx.Layout, q, lo, hi, j, qw, qd)
	},

	{geom.Shape33, ConstScalar}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed33[coeff.Scalar](coeff.Const[coeff.Scalar]{Value: coeff.Scalar(ctx.Coeff)}, ctx.Layout, q, lo, hi, j, qw, qd)
	},
	{geom.Shape33, QuadScalar}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed33[coeff.Scalar](coeff.QuadScalar{Data: c}, ctx.Layout, q, lo, hi, j, qw, qd)
	},
	{geom.Shape33, QuadVector}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed33[coeff.Diag3](coeff.QuadDiag3{Data: c, Stride: q}, ctx.Layout, q, lo, hi, j, qw, qd)
	},
	{geom.Shape33, QuadMatrix}: func(ctx *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
		mixed33[coeff.Sym3](coeff.QuadSym3{Data: c, Stride: q}, ctx.Layout, q, lo, hi, j, qw, qd)
	},
}

// In 1D every coefficient rank is a single value and the block is qw * c.
func mixed11Quad(_ *MixedMassContext, q, lo, hi int, c, j, qw, qd []float64) {
	kernels.Mul(qd[lo:hi], qw[lo:hi], c[lo:hi])
}

// A 1x1 block looks the same in every layout.
func mixed21[C coeff.Coeff2, S coeff.Source[C]](src S, q, lo, hi int, j, qw, qd []float64) {
	for i := lo; i < hi; i++ {
		jl := geom.Unpack21(j, i, q)
		adjt, det := kernels.AdjJt21(jl)
		kernels.StoreDense1(kernels.MultJtCAdjJt21(jl, adjt, src.At(i), qw[i]/det), qd, i)
	}
}

func mixed22[C coeff.Coeff2, S coeff.Source[C]](src S, l kernels.Layout, q, lo, hi int, j, qw, qd []float64) {
	for i := lo; i < hi; i++ {
		jl := geom.Unpack22(j, i, q)
		adjt, det := kernels.AdjJt22(jl)
		kernels.StoreDense2(l, kernels.MultJtCAdjJt22(jl, adjt, src.At(i), qw[i]/det), qd, i, q)
	}
}

func mixed32[C coeff.Coeff3, S coeff.Source[C]](src S, l kernels.Layout, q, lo, hi int, j, qw, qd []float64) {
	for i := lo; i < hi; i++ {
		jl := geom.Unpack32(j, i, q)
		adjt, det := kernels.AdjJt32(jl)
		kernels.StoreDense2(l, kernels.MultJtCAdjJt32(jl, adjt, src.At(i), qw[i]/det), qd, i, q)
	}
}

func mixed33[C coeff.Coeff3, S coeff.Source[C]](src S, l kernels.Layout, q, lo, hi int, j, qw, qd []float64) {
	for i := lo; i < hi; i++ {
		jl := geom.Unpack33(j, i, q)
		adjt, det := kernels.AdjJt33(jl)
		kernels.StoreDense3(l, kernels.MultJtCAdjJt33(jl, adjt, src.At(i), qw[i]/det), qd, i, q)
	}
}
