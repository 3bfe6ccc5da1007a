package qfunction_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/geom"
	"github.com/notargets/QFKernel/kernels"
	"github.com/notargets/QFKernel/qfunction"
	"github.com/notargets/QFKernel/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var (
	kinds   = []qfunction.Kind{qfunction.ConstScalar, qfunction.QuadScalar, qfunction.QuadVector, qfunction.QuadMatrix}
	layouts = []kernels.Layout{kernels.Dense, kernels.Transposed, kernels.Symmetric}
	ranks   = []coeff.Rank{coeff.RankScalar, coeff.RankVector, coeff.RankMatrix}
)

func apply(t *testing.T, qf qfunction.QFunction, q int, in [][]float64) []float64 {
	t.Helper()
	out := qfunction.Alloc(qf.Outputs(), q)
	qf.Apply(q, in, out)
	return out[0]
}

func TestMixedMass_ConstScalar1D(t *testing.T) {
	qf, err := qfunction.NewMixedMass(qfunction.MixedMassContext{
		Shape: geom.Shape11, Kind: qfunction.ConstScalar, Coeff: 3,
	})
	require.NoError(t, err)
	j := []float64{0.5, 2, -1, 4, 0.25}
	qw := []float64{1, 0.5, 0.25, 2, 3}
	got := apply(t, qf, len(qw), [][]float64{j, qw})
	for i := range qw {
		assert.InDelta(t, 3*qw[i], got[i], 1e-15, "point %d", i)
	}
}

func TestMixedMass_Scalar2DIdentity(t *testing.T) {
	qf, err := qfunction.NewMixedMass(qfunction.MixedMassContext{
		Shape: geom.Shape22, Kind: qfunction.QuadScalar, Layout: kernels.Dense,
	})
	require.NoError(t, err)
	got := apply(t, qf, 1, [][]float64{{2}, {1, 0, 0, 1}, {0.5}})
	assert.Equal(t, []float64{1, 0, 0, 1}, got)
}

func TestMixedMass_SurfaceIdentityMatrix(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	const q = 5
	qf, err := qfunction.NewMixedMass(qfunction.MixedMassContext{
		Shape: geom.Shape32, Kind: qfunction.QuadMatrix, Layout: kernels.Dense,
	})
	require.NoError(t, err)

	c := make([]float64, 6*q)
	for i := 0; i < q; i++ {
		c[0*q+i], c[3*q+i], c[5*q+i] = 1, 1, 1
	}
	j := make([]float64, 6*q)
	qw := make([]float64, q)
	for i := 0; i < q; i++ {
		for k, v := range reference.RandomJacobian(rng, geom.Shape32) {
			j[k*q+i] = v
		}
		qw[i] = 0.1 + rng.Float64()
	}
	got := apply(t, qf, q, [][]float64{c, j, qw})

	for i := 0; i < q; i++ {
		jac := make([]float64, 6)
		geom.Reconstruct(geom.Shape32, j, i, q, jac)
		jm := reference.Jacobian(geom.Shape32, jac)
		adjt, err := reference.AdjT(jm)
		require.NoError(t, err)
		// qw / det(J) J^T adj(J)^T, which is qw I
		var geo mat.Dense
		geo.Mul(jm.T(), adjt)
		geo.Scale(qw[i]/reference.Det(jm), &geo)
		for k, v := range reference.Flatten(kernels.Dense, &geo) {
			assert.InDelta(t, v, got[k*q+i], 1e-13)
		}
		assert.InDelta(t, qw[i], got[i], 1e-13)
		assert.InDelta(t, 0, got[q+i], 1e-13)
		assert.InDelta(t, qw[i], got[3*q+i], 1e-13)
	}
}

func TestMixedMass_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))
	const q = 17
	for _, s := range geom.Shapes {
		for _, kind := range kinds {
			for _, layout := range layouts {
				ctx := qfunction.MixedMassContext{Shape: s, Kind: kind, Layout: layout, Coeff: 1.5}
				t.Run(s.String()+"_"+kind.String()+"_"+layout.String(), func(t *testing.T) {
					qf, err := qfunction.NewMixedMass(ctx)
					require.NoError(t, err)
					in := reference.MixedMassInputs(rng, ctx, q)
					want, err := reference.MixedMassBatch(ctx, q, in)
					require.NoError(t, err)
					assert.InDeltaSlice(t, want, apply(t, qf, q, in), 1e-12)
				})
			}
		}
	}
}

func TestMixedMass_LayoutsAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(15, 16))
	const q = 9
	for _, s := range []geom.Shape{geom.Shape22, geom.Shape32, geom.Shape33} {
		for _, kind := range kinds {
			ctx := qfunction.MixedMassContext{Shape: s, Kind: kind, Coeff: 2}
			in := reference.MixedMassInputs(rng, ctx, q)
			out := map[kernels.Layout][]float64{}
			for _, layout := range layouts {
				ctx.Layout = layout
				qf, err := qfunction.NewMixedMass(ctx)
				require.NoError(t, err)
				out[layout] = apply(t, qf, q, in)
			}
			d := s.Ref
			for i := 0; i < q; i++ {
				p := 0
				for a := 0; a < d; a++ {
					for b := 0; b < d; b++ {
						dense := out[kernels.Dense][(b*d+a)*q+i] // M(a, b)
						assert.Equal(t, dense, out[kernels.Transposed][(a*d+b)*q+i])
						if b >= a {
							assert.Equal(t, dense, out[kernels.Symmetric][p*q+i], "%v %v (%d,%d)", s, kind, a, b)
							p++
						}
					}
				}
			}
		}
	}
}

func TestMixedMass_Bilinear(t *testing.T) {
	rng := rand.New(rand.NewPCG(17, 18))
	const q = 8
	for _, s := range geom.Shapes {
		for _, kind := range kinds[1:] {
			ctx := qfunction.MixedMassContext{Shape: s, Kind: kind, Layout: kernels.Dense}
			qf, err := qfunction.NewMixedMass(ctx)
			require.NoError(t, err)
			in := reference.MixedMassInputs(rng, ctx, q)
			once := apply(t, qf, q, in)

			doubled := make([]float64, len(in[0]))
			for k, v := range in[0] {
				doubled[k] = 2 * v
			}
			twice := apply(t, qf, q, [][]float64{doubled, in[1], in[2]})
			for k := range once {
				assert.InDelta(t, 2*once[k], twice[k], 1e-12, "%v %v", s, kind)
			}
		}
	}
}

func TestApplyRange_DisjointEqualsApply(t *testing.T) {
	rng := rand.New(rand.NewPCG(19, 20))
	const q = 23
	ctx := qfunction.MixedMassContext{Shape: geom.Shape33, Kind: qfunction.QuadMatrix, Layout: kernels.Transposed}
	qf, err := qfunction.NewMixedMass(ctx)
	require.NoError(t, err)
	in := reference.MixedMassInputs(rng, ctx, q)
	whole := apply(t, qf, q, in)

	out := qfunction.Alloc(qf.Outputs(), q)
	for _, r := range [][2]int{{10, 23}, {0, 4}, {4, 10}} {
		qf.ApplyRange(q, r[0], r[1], in, out)
	}
	assert.Equal(t, whole, out[0])

	vctx, vin, err := reference.VectorMassCase(rng, geom.Shape32, coeff.RankMatrix, true, q)
	require.NoError(t, err)
	vm, err := qfunction.NewVectorMass(vctx)
	require.NoError(t, err)
	vwhole := apply(t, vm, q, vin)
	vout := qfunction.Alloc(vm.Outputs(), q)
	vm.ApplyRange(q, 7, q, vin, vout)
	vm.ApplyRange(q, 0, 7, vin, vout)
	assert.Equal(t, vwhole, vout[0])
}

func TestVectorMass_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 22))
	const q = 13
	for _, s := range geom.Shapes {
		for _, rank := range ranks {
			for _, second := range []bool{false, true} {
				ctx, in, err := reference.VectorMassCase(rng, s, rank, second, q)
				require.NoError(t, err)
				qf, err := qfunction.NewVectorMass(ctx)
				require.NoError(t, err)
				got := apply(t, qf, q, in)
				assert.InDeltaSlice(t, reference.VectorMassBatch(ctx, q, in), got, 1e-12,
					"%v %v second=%t", s, rank, second)
			}
		}
	}
}

func TestVectorMass_SecondTerm(t *testing.T) {
	first, err := coeff.NewScalarTable([]int{0, 1}, []float64{1, 3})
	require.NoError(t, err)
	second, err := coeff.NewScalarTable([]int{1, 0}, []float64{5, 7})
	require.NoError(t, err)
	qf, err := qfunction.NewVectorMass(qfunction.VectorMassContext{
		Shape:  geom.Shape22,
		Tables: coeff.Pair{First: first, Second: second},
	})
	require.NoError(t, err)
	require.Equal(t, []qfunction.Field{{Name: "qdata", Size: 4}}, qf.Outputs())

	// Two points with adj(J)^T / det(J) = I
	const q = 2
	g := []float64{
		1, 2, // attr
		0.5, 2, // wdetJ
		1, 1, 0, 0, 0, 0, 1, 1, // adjJt
	}
	qw := []float64{0.25, 1}
	got := apply(t, qf, q, [][]float64{g, qw})

	// Point 0: attr 1, B = 1, second 7; point 1: attr 2, B = 3, second 5
	want := []float64{
		0.5 * 1, 2 * 3,
		0, 0,
		0.5 * 1, 2 * 3,
		7 * 0.25 * 0.25 / 0.5, 5.0 * 1 * 1 / 2,
	}
	assert.InDeltaSlice(t, want, got, 1e-15)
	require.NoError(t, qfunction.CheckFinite(qf, q, [][]float64{got}))
}

func TestNew_Unsupported(t *testing.T) {
	_, err := qfunction.NewMixedMass(qfunction.MixedMassContext{Shape: geom.Shape{Space: 3, Ref: 1}})
	assert.True(t, errors.Is(err, geom.ErrUnsupportedShape))
	_, err = qfunction.NewMixedMass(qfunction.MixedMassContext{Shape: geom.Shape22, Layout: kernels.Layout(9)})
	assert.True(t, errors.Is(err, qfunction.ErrUnsupported))
	_, err = qfunction.NewMixedMass(qfunction.MixedMassContext{Shape: geom.Shape22, Kind: qfunction.Kind(9)})
	assert.True(t, errors.Is(err, qfunction.ErrUnsupported))

	scalar, err := coeff.NewScalarTable([]int{0}, []float64{1})
	require.NoError(t, err)
	vec2, err := coeff.NewVectorTable(2, []int{0}, []float64{1, 1})
	require.NoError(t, err)

	testCases := []struct {
		name string
		ctx  qfunction.VectorMassContext
		want error
	}{
		{"bad shape", qfunction.VectorMassContext{Shape: geom.Shape{Space: 2, Ref: 3}, Tables: coeff.Pair{First: scalar}}, geom.ErrUnsupportedShape},
		{"no first table", qfunction.VectorMassContext{Shape: geom.Shape22}, qfunction.ErrUnsupported},
		{"dimension mismatch", qfunction.VectorMassContext{Shape: geom.Shape33, Tables: coeff.Pair{First: vec2}}, qfunction.ErrUnsupported},
		{"vector second", qfunction.VectorMassContext{Shape: geom.Shape22, Tables: coeff.Pair{First: scalar, Second: vec2}}, qfunction.ErrUnsupported},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := qfunction.NewVectorMass(tc.ctx)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestFields(t *testing.T) {
	testCases := []struct {
		ctx     qfunction.MixedMassContext
		inputs  []int
		outputs int
	}{
		{qfunction.MixedMassContext{Shape: geom.Shape11, Kind: qfunction.ConstScalar}, []int{1, 1}, 1},
		{qfunction.MixedMassContext{Shape: geom.Shape21, Kind: qfunction.QuadVector}, []int{2, 2, 1}, 1},
		{qfunction.MixedMassContext{Shape: geom.Shape22, Kind: qfunction.QuadMatrix, Layout: kernels.Symmetric}, []int{3, 4, 1}, 3},
		{qfunction.MixedMassContext{Shape: geom.Shape32, Kind: qfunction.QuadMatrix}, []int{6, 6, 1}, 4},
		{qfunction.MixedMassContext{Shape: geom.Shape33, Kind: qfunction.QuadScalar, Layout: kernels.Transposed}, []int{1, 9, 1}, 9},
	}
	for _, tc := range testCases {
		qf, err := qfunction.NewMixedMass(tc.ctx)
		require.NoError(t, err)
		var sizes []int
		for _, f := range qf.Inputs() {
			sizes = append(sizes, f.Size)
		}
		assert.Equal(t, tc.inputs, sizes, "%v %v", tc.ctx.Shape, tc.ctx.Kind)
		assert.Equal(t, tc.outputs, qf.Outputs()[0].Size)
	}
}

func TestCheckFinite(t *testing.T) {
	qf, err := qfunction.NewMixedMass(qfunction.MixedMassContext{Shape: geom.Shape22, Kind: qfunction.ConstScalar, Coeff: 1})
	require.NoError(t, err)
	// A singular Jacobian at point 1
	j := []float64{1, 0, 0, 0, 0, 0, 1, 0}
	out := qfunction.Alloc(qf.Outputs(), 2)
	qf.Apply(2, [][]float64{j, {1, 1}}, out)
	err = qfunction.CheckFinite(qf, 2, out)
	assert.True(t, errors.Is(err, qfunction.ErrNonFinite), "got %v", err)
	assert.False(t, math.IsNaN(out[0][0]))
}

func TestApply_NoAllocs(t *testing.T) {
	rng := rand.New(rand.NewPCG(23, 24))
	const q = 16
	for _, ctx := range []qfunction.MixedMassContext{
		{Shape: geom.Shape11, Kind: qfunction.ConstScalar, Coeff: 2},
		{Shape: geom.Shape11, Kind: qfunction.QuadScalar},
		{Shape: geom.Shape21, Kind: qfunction.QuadMatrix},
		{Shape: geom.Shape32, Kind: qfunction.QuadVector, Layout: kernels.Symmetric},
		{Shape: geom.Shape33, Kind: qfunction.QuadMatrix, Layout: kernels.Dense},
	} {
		t.Run(ctx.Shape.String()+"_"+ctx.Kind.String(), func(t *testing.T) {
			mixed, err := qfunction.NewMixedMass(ctx)
			require.NoError(t, err)
			in := reference.MixedMassInputs(rng, ctx, q)
			out := qfunction.Alloc(mixed.Outputs(), q)
			assert.Zero(t, testing.AllocsPerRun(50, func() { mixed.Apply(q, in, out) }))
		})
	}

	vctx, vin, err := reference.VectorMassCase(rng, geom.Shape22, coeff.RankMatrix, true, q)
	require.NoError(t, err)
	vm, err := qfunction.NewVectorMass(vctx)
	require.NoError(t, err)
	vout := qfunction.Alloc(vm.Outputs(), q)
	assert.Zero(t, testing.AllocsPerRun(50, func() { vm.Apply(q, vin, vout) }))
}
