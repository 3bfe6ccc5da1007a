package builder

import (
	"fmt"
	"strings"

	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/geom"
	"github.com/notargets/QFKernel/kernels"
	"github.com/notargets/QFKernel/qfunction"
)

// Every quadrature kernel takes the partition sizes and offsets first, then
// one device array per input field and one per output field. Component k of
// point i of a field lives at k*NPOINTS+i.
const kernelPartitionArgs = "const int_t* K, const int_t* KOFF"

// MixedMassKernel returns the kernel name and OKL source computing the mixed
// mass data of ctx. The kernel arguments after the partition arrays are the
// coefficient (a single value for ConstScalar), J, qw and qdata.
func (kb *Builder) MixedMassKernel(ctx qfunction.MixedMassContext) (name, source string) {
	s := ctx.Shape
	name = fmt.Sprintf("mixedMass%v_%s_%s", s, cIdent(ctx.Kind.String()), ctx.Layout)

	var sb strings.Builder
	writeShapeDefines(&sb, s)
	sb.WriteString(adjugateSource(s))
	sb.WriteString(quadCoeffSource(ctx.Kind))
	sb.WriteString(mixedProductSource)
	sb.WriteString(storeSource(ctx.Layout))

	fmt.Fprintf(&sb, `@kernel void %s(
	%s,
	const real_t* c,
	const real_t* J,
	const real_t* qw,
	real_t* qd
) {
	for (int part = 0; part < NPART; ++part; @outer) {
		for (int elem = 0; elem < KpartMax; ++elem; @inner) {
			if (elem < K[part]) {
				const int_t i = KOFF[part] + elem;
				real_t Jl[SDIM*DIM], A[SDIM*DIM], C[SDIM*SDIM], M[DIM*DIM];
				for (int k = 0; k < SDIM*DIM; ++k) {
					Jl[k] = J[k*NPOINTS + i];
				}
				const real_t det = qf_adjt(Jl, A);
				qf_coeff(c, i, C);
				qf_mixed(Jl, C, A, qw[i]/det, M);
				qf_store(M, qd, i);
			}
		}
	}
}
`, name, kernelPartitionArgs)
	return name, sb.String()
}

// VectorMassKernel returns the kernel name and OKL source computing the
// attribute-driven mass data of ctx. The kernel arguments after the partition
// arrays are the encoded coefficient tables, the geometry block, qw and
// qdata. secondOffset locates the second table in the encoded buffer and is
// ignored when ctx has no second table.
func (kb *Builder) VectorMassKernel(ctx qfunction.VectorMassContext, secondOffset int) (name, source string) {
	s := ctx.Shape
	first, second := ctx.Tables.First, ctx.Tables.Second
	name = fmt.Sprintf("vectorMass%v_%s_w%d", s, first.Rank(), first.Width())
	if second != nil {
		name += fmt.Sprintf("_second%d", secondOffset)
	}

	var sb strings.Builder
	writeShapeDefines(&sb, s)
	fmt.Fprintf(&sb, "#define FIRST_WIDTH %d\n", first.Width())
	fmt.Fprintf(&sb, "#define PACKED %d\n", s.PackedSize())
	if second != nil {
		fmt.Fprintf(&sb, "#define SECOND_OFFSET %d\n", secondOffset)
	}
	sb.WriteString("\n")
	sb.WriteString(tableRowSource)
	sb.WriteString(tableCoeffSource(first.Rank()))
	sb.WriteString(congruenceSource)

	secondTerm := ""
	if second != nil {
		secondTerm = `
				const real_t c2 = qf_table_row(ctx + SECOND_OFFSET, attr, 1)[0];
				qd[PACKED*NPOINTS + i] = c2*qw[i]*qw[i]/wdetJ;`
	}
	fmt.Fprintf(&sb, `@kernel void %s(
	%s,
	const real_t* ctx,
	const real_t* geo,
	const real_t* qw,
	real_t* qd
) {
	for (int part = 0; part < NPART; ++part; @outer) {
		for (int elem = 0; elem < KpartMax; ++elem; @inner) {
			if (elem < K[part]) {
				const int_t i = KOFF[part] + elem;
				const int attr = (int)geo[i];
				const real_t wdetJ = geo[NPOINTS + i];
				real_t A[SDIM*DIM], B[SDIM*SDIM];
				for (int k = 0; k < SDIM*DIM; ++k) {
					A[k] = geo[(2 + k)*NPOINTS + i];
				}
				qf_table_coeff(ctx, attr, B);
				qf_congruence(A, B, wdetJ, qd, i);%s
			}
		}
	}
}
`, name, kernelPartitionArgs, secondTerm)
	return name, sb.String()
}

func writeShapeDefines(sb *strings.Builder, s geom.Shape) {
	fmt.Fprintf(sb, "#define SDIM %d\n", s.Space)
	fmt.Fprintf(sb, "#define DIM %d\n", s.Ref)
	sb.WriteString("\n")
}

func cIdent(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

// adjugateSource writes qf_adjt, which fills A with adj(J)^T in the local
// geometry layout and returns det(J), or sqrt(det(J^T J)) for a
// non-square J.
func adjugateSource(s geom.Shape) string {
	var body string
	switch s {
	case geom.Shape11:
		body = `	A[0] = REAL_ONE;
	return J[0];`
	case geom.Shape21:
		body = `	const real_t d = sqrt(J[0]*J[0] + J[1]*J[1]);
	A[0] = J[0]/d;
	A[1] = J[1]/d;
	return d;`
	case geom.Shape22:
		body = `	A[0] = J[3];
	A[1] = -J[2];
	A[2] = -J[1];
	A[3] = J[0];
	return J[0]*J[3] - J[1]*J[2];`
	case geom.Shape32:
		body = `	const real_t E = J[0]*J[0] + J[1]*J[1] + J[2]*J[2];
	const real_t F = J[0]*J[3] + J[1]*J[4] + J[2]*J[5];
	const real_t G = J[3]*J[3] + J[4]*J[4] + J[5]*J[5];
	const real_t d = sqrt(E*G - F*F);
	for (int c = 0; c < 3; ++c) {
		A[c] = (G*J[c] - F*J[3 + c])/d;
		A[3 + c] = (E*J[3 + c] - F*J[c])/d;
	}
	return d;`
	case geom.Shape33:
		body = `	A[0] = J[4]*J[8] - J[5]*J[7];
	A[1] = J[5]*J[6] - J[3]*J[8];
	A[2] = J[3]*J[7] - J[4]*J[6];
	A[3] = J[7]*J[2] - J[8]*J[1];
	A[4] = J[8]*J[0] - J[6]*J[2];
	A[5] = J[6]*J[1] - J[7]*J[0];
	A[6] = J[1]*J[5] - J[2]*J[4];
	A[7] = J[2]*J[3] - J[0]*J[5];
	A[8] = J[0]*J[4] - J[1]*J[3];
	return J[0]*A[0] + J[1]*A[1] + J[2]*A[2];`
	default:
		panic(fmt.Sprintf("no adjugate for shape %v", s))
	}
	return "real_t qf_adjt(const real_t* J, real_t* A) {\n" + body + "\n}\n\n"
}

// quadCoeffSource writes qf_coeff, which expands the coefficient of point i
// into a full SDIM x SDIM matrix.
func quadCoeffSource(k qfunction.Kind) string {
	var body string
	switch k {
	case qfunction.ConstScalar:
		body = `	for (int d = 0; d < SDIM; ++d) C[d*SDIM + d] = c[0];`
	case qfunction.QuadScalar:
		body = `	for (int d = 0; d < SDIM; ++d) C[d*SDIM + d] = c[i];`
	case qfunction.QuadVector:
		body = `	for (int d = 0; d < SDIM; ++d) C[d*SDIM + d] = c[d*NPOINTS + i];`
	case qfunction.QuadMatrix:
		body = `	int p = 0;
	for (int a = 0; a < SDIM; ++a) {
		for (int b = a; b < SDIM; ++b, ++p) {
			C[a*SDIM + b] = c[p*NPOINTS + i];
			C[b*SDIM + a] = c[p*NPOINTS + i];
		}
	}`
	default:
		panic(fmt.Sprintf("no coefficient loader for %v", k))
	}
	return `void qf_coeff(const real_t* c, const int_t i, real_t* C) {
	for (int k = 0; k < SDIM*SDIM; ++k) C[k] = REAL_ZERO;
` + body + "\n}\n\n"
}

// M[k*DIM + a] = w * J(:,a) . C adj(J)^T(:,k)
const mixedProductSource = `void qf_mixed(const real_t* J, const real_t* C, const real_t* A, const real_t w, real_t* M) {
	for (int k = 0; k < DIM; ++k) {
		real_t R[SDIM];
		for (int r = 0; r < SDIM; ++r) {
			R[r] = REAL_ZERO;
			for (int s = 0; s < SDIM; ++s) R[r] += C[r*SDIM + s]*A[k*SDIM + s];
		}
		for (int a = 0; a < DIM; ++a) {
			real_t v = REAL_ZERO;
			for (int r = 0; r < SDIM; ++r) v += J[a*SDIM + r]*R[r];
			M[k*DIM + a] = w*v;
		}
	}
}

`

func storeSource(l kernels.Layout) string {
	var body string
	switch l {
	case kernels.Dense:
		body = `	for (int k = 0; k < DIM*DIM; ++k) qd[k*NPOINTS + i] = M[k];`
	case kernels.Transposed:
		body = `	for (int k = 0; k < DIM; ++k) {
		for (int a = 0; a < DIM; ++a) qd[(k*DIM + a)*NPOINTS + i] = M[a*DIM + k];
	}`
	case kernels.Symmetric:
		body = `	int p = 0;
	for (int a = 0; a < DIM; ++a) {
		for (int b = a; b < DIM; ++b, ++p) qd[p*NPOINTS + i] = M[b*DIM + a];
	}`
	default:
		panic(fmt.Sprintf("no store for layout %v", l))
	}
	return "void qf_store(const real_t* M, real_t* qd, const int_t i) {\n" + body + "\n}\n\n"
}

// qf_table_row returns the values of the material mapped to attr in an
// encoded table.
const tableRowSource = `const real_t* qf_table_row(const real_t* t, const int attr, const int width) {
	const int nattr = (int)t[0];
	const int mat = (int)t[attr];
	return t + nattr + 4 + mat*width;
}

`

func tableCoeffSource(r coeff.Rank) string {
	var body string
	switch r {
	case coeff.RankScalar:
		body = `	for (int d = 0; d < SDIM; ++d) B[d*SDIM + d] = v[0];`
	case coeff.RankVector:
		body = `	for (int d = 0; d < SDIM; ++d) B[d*SDIM + d] = v[d];`
	case coeff.RankMatrix:
		body = `	int p = 0;
	for (int a = 0; a < SDIM; ++a) {
		for (int b = a; b < SDIM; ++b, ++p) {
			B[a*SDIM + b] = v[p];
			B[b*SDIM + a] = v[p];
		}
	}`
	default:
		panic(fmt.Sprintf("no table loader for %v", r))
	}
	return `void qf_table_coeff(const real_t* t, const int attr, real_t* B) {
	const real_t* v = qf_table_row(t, attr, FIRST_WIDTH);
	for (int k = 0; k < SDIM*SDIM; ++k) B[k] = REAL_ZERO;
` + body + "\n}\n\n"
}

// Packed upper triangle of s * A^T B A.
const congruenceSource = `void qf_congruence(const real_t* A, const real_t* B, const real_t s, real_t* qd, const int_t i) {
	int p = 0;
	for (int a = 0; a < DIM; ++a) {
		for (int b = a; b < DIM; ++b, ++p) {
			real_t v = REAL_ZERO;
			for (int r = 0; r < SDIM; ++r) {
				for (int t = 0; t < SDIM; ++t) v += A[a*SDIM + r]*B[r*SDIM + t]*A[b*SDIM + t];
			}
			qd[p*NPOINTS + i] = s*v;
		}
	}
}

`
