package coeff

import (
	"errors"
	"fmt"
)

// ErrTableShape is returned when a table is constructed from inconsistent
// sizes.
var ErrTableShape = errors.New("inconsistent coefficient table")

// Rank is the tensor rank of the coefficients stored in a Table.
type Rank uint8

const (
	RankScalar Rank = iota
	RankVector      // diagonal, one value per space component
	RankMatrix      // symmetric, packed upper triangle
)

func (r Rank) String() string {
	switch r {
	case RankScalar:
		return "scalar"
	case RankVector:
		return "vector"
	case RankMatrix:
		return "matrix"
	}
	return fmt.Sprintf("Rank(%d)", uint8(r))
}

// Table maps 1-based mesh attributes to material coefficients. It is
// immutable after construction. Lookups do not check the attribute range.
type Table struct {
	rank    Rank
	dim     int
	attrMat []int
	values  []float64
}

// Pair holds the two independent coefficient tables of an operator that needs
// a second coefficient, such as a mass term plus a div-div or curl-curl term.
// Second may be nil.
type Pair struct {
	First  *Table
	Second *Table
}

// NewScalarTable builds a table of scalar coefficients. attrMat[a-1] is the
// material row of attribute a and values holds one value per material.
func NewScalarTable(attrMat []int, values []float64) (*Table, error) {
	return newTable(RankScalar, 1, attrMat, values)
}

// NewVectorTable builds a table of diagonal coefficients with dim values per
// material.
func NewVectorTable(dim int, attrMat []int, values []float64) (*Table, error) {
	return newTable(RankVector, dim, attrMat, values)
}

// NewMatrixTable builds a table of symmetric dim x dim coefficients stored as
// dim*(dim+1)/2 packed values per material.
func NewMatrixTable(dim int, attrMat []int, values []float64) (*Table, error) {
	return newTable(RankMatrix, dim, attrMat, values)
}

func newTable(rank Rank, dim int, attrMat []int, values []float64) (*Table, error) {
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("%s table dimension %d: %w", rank, dim, ErrTableShape)
	}
	width := Width(rank, dim)
	if len(values)%width != 0 {
		return nil, fmt.Errorf("%d values is not a multiple of width %d: %w",
			len(values), width, ErrTableShape)
	}
	nmat := len(values) / width
	for a, m := range attrMat {
		if m < 0 || m >= nmat {
			return nil, fmt.Errorf("attribute %d maps to material %d of %d: %w",
				a+1, m, nmat, ErrTableShape)
		}
	}
	t := &Table{
		rank:    rank,
		dim:     dim,
		attrMat: make([]int, len(attrMat)),
		values:  make([]float64, len(values)),
	}
	copy(t.attrMat, attrMat)
	copy(t.values, values)
	return t, nil
}

// Width returns the number of stored values per material for a rank and
// space dimension.
func Width(rank Rank, dim int) int {
	switch rank {
	case RankVector:
		return dim
	case RankMatrix:
		return dim * (dim + 1) / 2
	}
	return 1
}

func (t *Table) Rank() Rank { return t.rank }

// Dim is the space dimension the coefficients act on (1 for scalars).
func (t *Table) Dim() int { return t.dim }

func (t *Table) Width() int { return Width(t.rank, t.dim) }

// NumAttributes is the number of attributes the table maps.
func (t *Table) NumAttributes() int { return len(t.attrMat) }

// NumMaterials is the number of distinct coefficient rows.
func (t *Table) NumMaterials() int { return len(t.values) / t.Width() }

// Row returns the stored values of attribute attr. The slice aliases the
// table and must not be modified.
func (t *Table) Row(attr int) []float64 {
	w := t.Width()
	k := t.attrMat[attr-1] * w
	return t.values[k : k+w : k+w]
}

// The typed lookups below assume the table rank and dimension match the
// requested type; dispatchers select them when the operator is built.

func (t *Table) Scalar(attr int) Scalar {
	return Scalar(t.values[t.attrMat[attr-1]])
}

func (t *Table) Diag2(attr int) Diag2 {
	k := t.attrMat[attr-1] * 2
	return Diag2{t.values[k], t.values[k+1]}
}

func (t *Table) Diag3(attr int) Diag3 {
	k := t.attrMat[attr-1] * 3
	return Diag3{t.values[k], t.values[k+1], t.values[k+2]}
}

func (t *Table) Sym2(attr int) Sym2 {
	k := t.attrMat[attr-1] * 3
	return Sym2{t.values[k], t.values[k+1], t.values[k+2]}
}

func (t *Table) Sym3(attr int) Sym3 {
	k := t.attrMat[attr-1] * 6
	return Sym3{
		t.values[k], t.values[k+1], t.values[k+2],
		t.values[k+3], t.values[k+4], t.values[k+5],
	}
}
