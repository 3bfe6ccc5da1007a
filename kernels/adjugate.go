package kernels

import (
	"math"

	"github.com/notargets/QFKernel/geom"
)

// AdjJtNN returns adj(J)^T in the same column-major Space x Ref layout as J,
// together with det(J). For Ref < Space, det(J) = sqrt(det(J^T J)) and
// adj(J) = adj(J^T J) J^T / det(J), so that J^T adj(J)^T = det(J) I holds for
// every shape.

func AdjJt11(j geom.Mat11) (geom.Mat11, float64) {
	return geom.Mat11{1}, j[0]
}

func AdjJt21(j geom.Mat21) (geom.Mat21, float64) {
	det := math.Sqrt(j[0]*j[0] + j[1]*j[1])
	return geom.Mat21{j[0] / det, j[1] / det}, det
}

// AdjJt22:
//
//	J: 0 2   adj(J)^T:  J22 -J21
//	   1 3             -J12  J11
func AdjJt22(j geom.Mat22) (geom.Mat22, float64) {
	return geom.Mat22{j[3], -j[2], -j[1], j[0]}, j[0]*j[3] - j[1]*j[2]
}

// AdjJt32 uses the metric tensor G = J^T J of the surface map.
func AdjJt32(j geom.Mat32) (geom.Mat32, float64) {
	a, b := j.Col(0), j.Col(1)
	e, f, g := a.Dot(a), a.Dot(b), b.Dot(b)
	det := math.Sqrt(e*g - f*f)
	s := 1 / det
	return geom.Mat32{
		(g*a[0] - f*b[0]) * s,
		(g*a[1] - f*b[1]) * s,
		(g*a[2] - f*b[2]) * s,
		(e*b[0] - f*a[0]) * s,
		(e*b[1] - f*a[1]) * s,
		(e*b[2] - f*a[2]) * s,
	}, det
}

// AdjJt33 returns the cofactor matrix: with J = [a b c] by columns,
// adj(J)^T = [b x c, c x a, a x b].
func AdjJt33(j geom.Mat33) (geom.Mat33, float64) {
	a, b, c := j.Col(0), j.Col(1), j.Col(2)
	bc, ca, ab := b.Cross(c), c.Cross(a), a.Cross(b)
	return geom.Mat33{
		bc[0], bc[1], bc[2],
		ca[0], ca[1], ca[2],
		ab[0], ab[1], ab[2],
	}, a.Dot(bc)
}

// Det returns det(J) of the local geometric factors of one point of shape s,
// for callers that do not need the adjugate.
func Det(s geom.Shape, local []float64) float64 {
	switch s {
	case geom.Shape11:
		return Det11(geom.Unpack11(local, 0, 1))
	case geom.Shape21:
		return Det21(geom.Unpack21(local, 0, 1))
	case geom.Shape22:
		return Det22(geom.Unpack22(local, 0, 1))
	case geom.Shape32:
		return Det32(geom.Unpack32(local, 0, 1))
	}
	return Det33(geom.Unpack33(local, 0, 1))
}

func Det11(j geom.Mat11) float64 { return j[0] }

func Det21(j geom.Mat21) float64 { return math.Sqrt(j[0]*j[0] + j[1]*j[1]) }

func Det22(j geom.Mat22) float64 { return j[0]*j[3] - j[1]*j[2] }

func Det32(j geom.Mat32) float64 {
	a, b := j.Col(0), j.Col(1)
	f := a.Dot(b)
	return math.Sqrt(a.Dot(a)*b.Dot(b) - f*f)
}

func Det33(j geom.Mat33) float64 {
	return j.Col(0).Dot(j.Col(1).Cross(j.Col(2)))
}
