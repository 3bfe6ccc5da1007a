// Package qfunction builds the quadrature data of vector finite element mass
// operators. A QFunction is selected once, when it is built, from the shape of
// the element map and the coefficient representation; applying it to a batch
// runs the selected closed-form kernels at every point without further
// configuration checks.
package qfunction

import (
	"errors"
	"fmt"

	"github.com/notargets/QFKernel/geom"
)

// ErrUnsupported is returned when no kernel is wired for a requested
// combination.
var ErrUnsupported = errors.New("unsupported quadrature function")

// Kind is how the material coefficient reaches the quadrature function.
type Kind uint8

const (
	ConstScalar Kind = iota // one scalar in the context
	QuadScalar              // scalar field, 1 component per point
	QuadVector              // diagonal field, Space components per point
	QuadMatrix              // symmetric field, Space*(Space+1)/2 components per point
)

func (k Kind) String() string {
	switch k {
	case ConstScalar:
		return "const-scalar"
	case QuadScalar:
		return "quad-scalar"
	case QuadVector:
		return "quad-vector"
	case QuadMatrix:
		return "quad-matrix"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Components is the number of coefficient field components per point, 0 for
// a constant coefficient.
func (k Kind) Components(s geom.Shape) int {
	switch k {
	case QuadScalar:
		return 1
	case QuadVector:
		return s.Space
	case QuadMatrix:
		return s.SymSize()
	}
	return 0
}

// Key selects a kernel family in a dispatch table.
type Key struct {
	Shape geom.Shape
	Kind  Kind
}

// Field describes one input or output buffer: Size values per point, stored
// with a stride equal to the batch size.
type Field struct {
	Name string
	Size int
}

// QFunction is the per-batch entry point invoked by an operator evaluation
// engine. Inputs and outputs are passed in the order reported by Inputs and
// Outputs. There is no error path: buffers, attributes and geometry are the
// caller's responsibility.
type QFunction interface {
	Inputs() []Field
	Outputs() []Field
	// Apply processes all q points of a batch.
	Apply(q int, in, out [][]float64)
	// ApplyRange processes points [lo, hi) of a batch of q points. Calls on
	// disjoint ranges of the same batch may run concurrently.
	ApplyRange(q, lo, hi int, in, out [][]float64)
}
