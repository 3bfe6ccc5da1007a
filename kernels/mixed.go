package kernels

import (
	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/geom"
)

// Dense Ref x Ref result blocks, column-major: entry (a, k) is at k*Ref + a.
type (
	Dense1 [1]float64
	Dense2 [4]float64
	Dense3 [9]float64
)

// The MultJtCAdjJtNN kernels compute w J^T C adj(J)^T for one point, given J
// and adj(J)^T from AdjJtNN. With w = qw / det(J) this is the quadrature data
// of the mixed H(curl)-H(div) mass operator; its transpose, w adj(J) C J, is
// the H(div)-H(curl) data.
//
// With R = C adj(J)^T computed column by column, entry (a, k) of the result is
// the dot product of column a of J with column k of R.

func MultJtCAdjJt11(j, adjt geom.Mat11, c coeff.Scalar, w float64) Dense1 {
	return Dense1{w * j[0] * float64(c) * adjt[0]}
}

func MultJtCAdjJt21[C coeff.Coeff2](j, adjt geom.Mat21, c C, w float64) Dense1 {
	r0, r1 := c.Apply2(adjt[0], adjt[1])
	return Dense1{w * (j[0]*r0 + j[1]*r1)}
}

func MultJtCAdjJt22[C coeff.Coeff2](j, adjt geom.Mat22, c C, w float64) Dense2 {
	r00, r10 := c.Apply2(adjt[0], adjt[1])
	r01, r11 := c.Apply2(adjt[2], adjt[3])
	return Dense2{
		w * (j[0]*r00 + j[1]*r10),
		w * (j[2]*r00 + j[3]*r10),
		w * (j[0]*r01 + j[1]*r11),
		w * (j[2]*r01 + j[3]*r11),
	}
}

func MultJtCAdjJt32[C coeff.Coeff3](j, adjt geom.Mat32, c C, w float64) Dense2 {
	r00, r10, r20 := c.Apply3(adjt[0], adjt[1], adjt[2])
	r01, r11, r21 := c.Apply3(adjt[3], adjt[4], adjt[5])
	return Dense2{
		w * (j[0]*r00 + j[1]*r10 + j[2]*r20),
		w * (j[3]*r00 + j[4]*r10 + j[5]*r20),
		w * (j[0]*r01 + j[1]*r11 + j[2]*r21),
		w * (j[3]*r01 + j[4]*r11 + j[5]*r21),
	}
}

func MultJtCAdjJt33[C coeff.Coeff3](j, adjt geom.Mat33, c C, w float64) Dense3 {
	r00, r10, r20 := c.Apply3(adjt[0], adjt[1], adjt[2])
	r01, r11, r21 := c.Apply3(adjt[3], adjt[4], adjt[5])
	r02, r12, r22 := c.Apply3(adjt[6], adjt[7], adjt[8])
	return Dense3{
		w * (j[0]*r00 + j[1]*r10 + j[2]*r20),
		w * (j[3]*r00 + j[4]*r10 + j[5]*r20),
		w * (j[6]*r00 + j[7]*r10 + j[8]*r20),
		w * (j[0]*r01 + j[1]*r11 + j[2]*r21),
		w * (j[3]*r01 + j[4]*r11 + j[5]*r21),
		w * (j[6]*r01 + j[7]*r11 + j[8]*r21),
		w * (j[0]*r02 + j[1]*r12 + j[2]*r22),
		w * (j[3]*r02 + j[4]*r12 + j[5]*r22),
		w * (j[6]*r02 + j[7]*r12 + j[8]*r22),
	}
}
