package kernels

import "fmt"

// Layout selects how a dense Ref x Ref block is written to quadrature data.
type Layout uint8

const (
	// Dense writes the block column-major (H(curl) trial, H(div) test).
	Dense Layout = iota
	// Transposed writes the transpose column-major (H(div) trial, H(curl) test).
	Transposed
	// Symmetric writes only the row-major upper triangle. Valid only when the
	// caller knows the block is symmetric.
	Symmetric
)

func (l Layout) String() string {
	switch l {
	case Dense:
		return "dense"
	case Transposed:
		return "transposed"
	case Symmetric:
		return "symmetric"
	}
	return fmt.Sprintf("Layout(%d)", uint8(l))
}

// Size is the number of values per point for a block of dimension ref.
func (l Layout) Size(ref int) int {
	if l == Symmetric {
		return ref * (ref + 1) / 2
	}
	return ref * ref
}

// Component k of point i goes to qd[i+k*stride].

func StoreDense1(m Dense1, qd []float64, i int) {
	qd[i] = m[0]
}

func StoreDense2(l Layout, m Dense2, qd []float64, i, stride int) {
	switch l {
	case Dense:
		qd[i] = m[0]
		qd[i+stride] = m[1]
		qd[i+2*stride] = m[2]
		qd[i+3*stride] = m[3]
	case Transposed:
		qd[i] = m[0]
		qd[i+stride] = m[2]
		qd[i+2*stride] = m[1]
		qd[i+3*stride] = m[3]
	case Symmetric:
		qd[i] = m[0]
		qd[i+stride] = m[2]
		qd[i+2*stride] = m[3]
	}
}

func StoreDense3(l Layout, m Dense3, qd []float64, i, stride int) {
	switch l {
	case Dense:
		for k := 0; k < 9; k++ {
			qd[i+k*stride] = m[k]
		}
	case Transposed:
		qd[i] = m[0]
		qd[i+stride] = m[3]
		qd[i+2*stride] = m[6]
		qd[i+3*stride] = m[1]
		qd[i+4*stride] = m[4]
		qd[i+5*stride] = m[7]
		qd[i+6*stride] = m[2]
		qd[i+7*stride] = m[5]
		qd[i+8*stride] = m[8]
	case Symmetric:
		qd[i] = m[0]
		qd[i+stride] = m[3]
		qd[i+2*stride] = m[6]
		qd[i+3*stride] = m[4]
		qd[i+4*stride] = m[7]
		qd[i+5*stride] = m[8]
	}
}

// StorePackedN writes a packed block scaled by s.

func StorePacked1(p Packed1, s float64, qd []float64, i int) {
	qd[i] = s * p[0]
}

func StorePacked2(p Packed2, s float64, qd []float64, i, stride int) {
	qd[i] = s * p[0]
	qd[i+stride] = s * p[1]
	qd[i+2*stride] = s * p[2]
}

func StorePacked3(p Packed3, s float64, qd []float64, i, stride int) {
	qd[i] = s * p[0]
	qd[i+stride] = s * p[1]
	qd[i+2*stride] = s * p[2]
	qd[i+3*stride] = s * p[3]
	qd[i+4*stride] = s * p[4]
	qd[i+5*stride] = s * p[5]
}
