package kernels

import (
	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/geom"
)

// Packed symmetric Ref x Ref result blocks, row-major upper triangle.
type (
	Packed1 [1]float64
	Packed2 [3]float64
	Packed3 [6]float64
)

// The MultAtBANN kernels compute A^T B A for a Space x Ref matrix A (stored
// like a Jacobian) and a symmetric Space x Space coefficient B. The result is
// symmetric and only its upper triangle is formed.

func MultAtBA11(a geom.Mat11, b coeff.Scalar) Packed1 {
	return Packed1{a[0] * float64(b) * a[0]}
}

func MultAtBA21[B coeff.Coeff2](a geom.Mat21, b B) Packed1 {
	r0, r1 := b.Apply2(a[0], a[1])
	return Packed1{a[0]*r0 + a[1]*r1}
}

func MultAtBA22[B coeff.Coeff2](a geom.Mat22, b B) Packed2 {
	r00, r10 := b.Apply2(a[0], a[1])
	r01, r11 := b.Apply2(a[2], a[3])
	return Packed2{
		a[0]*r00 + a[1]*r10,
		a[0]*r01 + a[1]*r11,
		a[2]*r01 + a[3]*r11,
	}
}

func MultAtBA32[B coeff.Coeff3](a geom.Mat32, b B) Packed2 {
	r00, r10, r20 := b.Apply3(a[0], a[1], a[2])
	r01, r11, r21 := b.Apply3(a[3], a[4], a[5])
	return Packed2{
		a[0]*r00 + a[1]*r10 + a[2]*r20,
		a[0]*r01 + a[1]*r11 + a[2]*r21,
		a[3]*r01 + a[4]*r11 + a[5]*r21,
	}
}

func MultAtBA33[B coeff.Coeff3](a geom.Mat33, b B) Packed3 {
	r00, r10, r20 := b.Apply3(a[0], a[1], a[2])
	r01, r11, r21 := b.Apply3(a[3], a[4], a[5])
	r02, r12, r22 := b.Apply3(a[6], a[7], a[8])
	return Packed3{
		a[0]*r00 + a[1]*r10 + a[2]*r20,
		a[0]*r01 + a[1]*r11 + a[2]*r21,
		a[0]*r02 + a[1]*r12 + a[2]*r22,
		a[3]*r01 + a[4]*r11 + a[5]*r21,
		a[3]*r02 + a[4]*r12 + a[5]*r22,
		a[6]*r02 + a[7]*r12 + a[8]*r22,
	}
}
