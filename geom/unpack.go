package geom

// Local geometric factor matrices. Entry k = r*Space + c holds the derivative
// of physical coordinate c with respect to reference coordinate r, so each
// array is the column-major storage of the Space x Ref Jacobian (or
// adjugate-Jacobian) at one point.
type (
	Mat11 [1]float64
	Mat21 [2]float64
	Mat22 [4]float64
	Mat32 [6]float64
	Mat33 [9]float64
)

// Vec3 is a column of a local matrix with three physical components.
type Vec3 [3]float64

// Unpack11 reads the local matrix of point i from a strided buffer in which
// component k of point i sits at src[i+k*stride].
func Unpack11(src []float64, i, stride int) Mat11 {
	return Mat11{src[i]}
}

// Unpack21 is Unpack11 for an edge in 2D.
func Unpack21(src []float64, i, stride int) Mat21 {
	return Mat21{src[i], src[i+stride]}
}

// Unpack22 is Unpack11 for a 2D element.
func Unpack22(src []float64, i, stride int) Mat22 {
	return Mat22{
		src[i],
		src[i+stride],
		src[i+2*stride],
		src[i+3*stride],
	}
}

// Unpack32 is Unpack11 for a surface in 3D.
func Unpack32(src []float64, i, stride int) Mat32 {
	return Mat32{
		src[i],
		src[i+stride],
		src[i+2*stride],
		src[i+3*stride],
		src[i+4*stride],
		src[i+5*stride],
	}
}

// Unpack33 is Unpack11 for a 3D element.
func Unpack33(src []float64, i, stride int) Mat33 {
	return Mat33{
		src[i],
		src[i+stride],
		src[i+2*stride],
		src[i+3*stride],
		src[i+4*stride],
		src[i+5*stride],
		src[i+6*stride],
		src[i+7*stride],
		src[i+8*stride],
	}
}

// Reconstruct copies the Ref*Space strided components of point i into dst
// and returns the number of values written. It is the shape-agnostic form of
// the UnpackNN functions, used off the hot path.
func Reconstruct(s Shape, src []float64, i, stride int, dst []float64) int {
	n := s.Components()
	for k := 0; k < n; k++ {
		dst[k] = src[i+k*stride]
	}
	return n
}

// Col returns column r (reference direction r) of the Jacobian.
func (m Mat32) Col(r int) Vec3 { return Vec3{m[3*r], m[3*r+1], m[3*r+2]} }

func (m Mat33) Col(r int) Vec3 { return Vec3{m[3*r], m[3*r+1], m[3*r+2]} }

func (v Vec3) Dot(w Vec3) float64 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }

func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}
