package geom

import (
	"errors"
	"fmt"
)

// ErrUnsupportedShape is returned when a (space, reference) dimension pair has
// no kernels.
var ErrUnsupportedShape = errors.New("unsupported shape")

// Shape identifies the dimensions of the element map at a quadrature point:
// a reference element of dimension Ref embedded in a space of dimension Space.
type Shape struct {
	Space int
	Ref   int
}

// The supported shapes. Shape32 is a surface element in 3D, Shape21 an edge
// element in 2D.
var (
	Shape11 = Shape{Space: 1, Ref: 1}
	Shape21 = Shape{Space: 2, Ref: 1}
	Shape22 = Shape{Space: 2, Ref: 2}
	Shape32 = Shape{Space: 3, Ref: 2}
	Shape33 = Shape{Space: 3, Ref: 3}
)

// Shapes lists every supported shape in dispatch order.
var Shapes = []Shape{Shape11, Shape21, Shape22, Shape32, Shape33}

// NewShape validates a dimension pair.
func NewShape(space, ref int) (Shape, error) {
	s := Shape{Space: space, Ref: ref}
	if !s.Supported() {
		return Shape{}, fmt.Errorf("space_dim=%d ref_dim=%d: %w", space, ref, ErrUnsupportedShape)
	}
	return s, nil
}

// Supported reports whether kernels exist for the shape.
func (s Shape) Supported() bool {
	switch s {
	case Shape11, Shape21, Shape22, Shape32, Shape33:
		return true
	}
	return false
}

// Components is the number of entries of the Jacobian at one point.
func (s Shape) Components() int { return s.Space * s.Ref }

// DenseSize is the number of entries of a dense Ref x Ref result block.
func (s Shape) DenseSize() int { return s.Ref * s.Ref }

// PackedSize is the number of entries of a symmetric Ref x Ref block stored as
// its upper triangle.
func (s Shape) PackedSize() int { return s.Ref * (s.Ref + 1) / 2 }

// SymSize is the number of packed entries of a symmetric Space x Space
// material coefficient.
func (s Shape) SymSize() int { return s.Space * (s.Space + 1) / 2 }

func (s Shape) String() string {
	return fmt.Sprintf("%d%d", s.Space, s.Ref)
}
