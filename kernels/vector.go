package kernels

import "github.com/ajroetker/go-highway/hwy/contrib/vec"

// Scale sets dst[i] = s * a[i] for i < len(dst). It runs the dispatched
// SIMD slice kernel and does not allocate.
func Scale(dst, a []float64, s float64) {
	vec.ScaleToFloat64(dst, s, a[:len(dst)])
}

// Mul sets dst[i] = a[i] * b[i] for i < len(dst).
func Mul(dst, a, b []float64) {
	vec.MulToFloat64(dst, a[:len(dst)], b[:len(dst)])
}
