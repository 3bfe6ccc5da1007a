package qfunction

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonFinite reports a NaN or infinite value in quadrature data, which is
// how degenerate geometry or invalid attributes surface.
var ErrNonFinite = errors.New("non-finite quadrature data")

// CheckFinite scans the output fields of qf for a batch of q points. It is an
// opt-in diagnostic for callers and tools; the quadrature functions never call
// it.
func CheckFinite(qf QFunction, q int, out [][]float64) error {
	for f, field := range qf.Outputs() {
		for k := 0; k < field.Size; k++ {
			for i := 0; i < q; i++ {
				v := out[f][k*q+i]
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("%s component %d point %d = %v: %w",
						field.Name, k, i, v, ErrNonFinite)
				}
			}
		}
	}
	return nil
}

// Alloc returns zeroed buffers sized for the fields of a batch of q points.
func Alloc(fields []Field, q int) [][]float64 {
	bufs := make([][]float64, len(fields))
	for f, field := range fields {
		bufs[f] = make([]float64, field.Size*q)
	}
	return bufs
}
