package coeff

// Source yields the coefficient at quadrature point i of a batch.
type Source[C any] interface {
	At(i int) C
}

// Const is a coefficient that does not vary over the batch.
type Const[C any] struct {
	Value C
}

func (s Const[C]) At(int) C { return s.Value }

// Quadrature coefficient fields. Component k of point i is Data[k*Stride+i].

type QuadScalar struct {
	Data []float64
}

func (s QuadScalar) At(i int) Scalar { return Scalar(s.Data[i]) }

type QuadDiag2 struct {
	Data   []float64
	Stride int
}

func (s QuadDiag2) At(i int) Diag2 {
	return Diag2{s.Data[i], s.Data[i+s.Stride]}
}

type QuadDiag3 struct {
	Data   []float64
	Stride int
}

func (s QuadDiag3) At(i int) Diag3 {
	return Diag3{s.Data[i], s.Data[i+s.Stride], s.Data[i+2*s.Stride]}
}

type QuadSym2 struct {
	Data   []float64
	Stride int
}

func (s QuadSym2) At(i int) Sym2 {
	return Sym2{s.Data[i], s.Data[i+s.Stride], s.Data[i+2*s.Stride]}
}

type QuadSym3 struct {
	Data   []float64
	Stride int
}

func (s QuadSym3) At(i int) Sym3 {
	d, q := s.Data, s.Stride
	return Sym3{d[i], d[i+q], d[i+2*q], d[i+3*q], d[i+4*q], d[i+5*q]}
}

// Attribute-driven sources look the coefficient up in a table using the
// per-point attribute ids, which arrive as reals and are truncated.

type AttrScalar struct {
	Table *Table
	Attr  []float64
}

func (s AttrScalar) At(i int) Scalar { return s.Table.Scalar(int(s.Attr[i])) }

type AttrDiag2 struct {
	Table *Table
	Attr  []float64
}

func (s AttrDiag2) At(i int) Diag2 { return s.Table.Diag2(int(s.Attr[i])) }

type AttrDiag3 struct {
	Table *Table
	Attr  []float64
}

func (s AttrDiag3) At(i int) Diag3 { return s.Table.Diag3(int(s.Attr[i])) }

type AttrSym2 struct {
	Table *Table
	Attr  []float64
}

func (s AttrSym2) At(i int) Sym2 { return s.Table.Sym2(int(s.Attr[i])) }

type AttrSym3 struct {
	Table *Table
	Attr  []float64
}

func (s AttrSym3) At(i int) Sym3 { return s.Table.Sym3(int(s.Attr[i])) }
