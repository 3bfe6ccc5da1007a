package coeff

// Material coefficient values at one point. The packed symmetric forms store
// the row-major upper triangle: Sym2 = {c11, c12, c22} and
// Sym3 = {c11, c12, c13, c22, c23, c33}.
type (
	Scalar float64
	Diag2  [2]float64
	Diag3  [3]float64
	Sym2   [3]float64
	Sym3   [6]float64
)

// Coeff2 is a coefficient acting on vectors in a 2D space.
type Coeff2 interface {
	Scalar | Diag2 | Sym2
	Apply2(x0, x1 float64) (float64, float64)
}

// Coeff3 is a coefficient acting on vectors in a 3D space.
type Coeff3 interface {
	Scalar | Diag3 | Sym3
	Apply3(x0, x1, x2 float64) (float64, float64, float64)
}

func (c Scalar) Apply2(x0, x1 float64) (float64, float64) {
	return float64(c) * x0, float64(c) * x1
}

func (c Scalar) Apply3(x0, x1, x2 float64) (float64, float64, float64) {
	return float64(c) * x0, float64(c) * x1, float64(c) * x2
}

func (c Diag2) Apply2(x0, x1 float64) (float64, float64) {
	return c[0] * x0, c[1] * x1
}

func (c Diag3) Apply3(x0, x1, x2 float64) (float64, float64, float64) {
	return c[0] * x0, c[1] * x1, c[2] * x2
}

// Apply2 multiplies by the symmetric matrix, reading the lower triangle from
// the packed upper one.
func (c Sym2) Apply2(x0, x1 float64) (float64, float64) {
	return c[0]*x0 + c[1]*x1,
		c[1]*x0 + c[2]*x1
}

func (c Sym3) Apply3(x0, x1, x2 float64) (float64, float64, float64) {
	return c[0]*x0 + c[1]*x1 + c[2]*x2,
		c[1]*x0 + c[3]*x1 + c[4]*x2,
		c[2]*x0 + c[4]*x1 + c[5]*x2
}

// PackedIndex returns the position of entry (i, j) of an n x n symmetric
// matrix stored as its row-major upper triangle.
func PackedIndex(n, i, j int) int {
	if i > j {
		i, j = j, i
	}
	return i*n - i*(i-1)/2 + j - i
}
