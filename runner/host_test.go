package runner

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/geom"
	"github.com/notargets/QFKernel/kernels"
	"github.com/notargets/QFKernel/qfunction"
	"github.com/notargets/QFKernel/reference"
	"github.com/notargets/QFKernel/runner/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHost_MatchesApply(t *testing.T) {
	rng := rand.New(rand.NewPCG(31, 32))
	testCases := []struct {
		name    string
		k       []int
		workers int
	}{
		{"single", []int{37}, 0},
		{"even", builder.EvenPartitions(37, 4), 0},
		{"uneven", []int{5, 0, 20, 12}, 2},
		{"one worker", builder.EvenPartitions(37, 8), 1},
	}
	ctx := qfunction.MixedMassContext{Shape: geom.Shape32, Kind: qfunction.QuadVector, Layout: kernels.Dense}
	qf, err := qfunction.NewMixedMass(ctx)
	require.NoError(t, err)
	in := reference.MixedMassInputs(rng, ctx, 37)
	want := qfunction.Alloc(qf.Outputs(), 37)
	qf.Apply(37, in, want)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			host := NewHost(builder.Config{K: tc.k})
			host.Workers = tc.workers
			out := qfunction.Alloc(qf.Outputs(), 37)
			require.NoError(t, host.Run(context.Background(), qf, in, out))
			assert.Equal(t, want, out)
		})
	}
}

func TestHost_VectorMass(t *testing.T) {
	rng := rand.New(rand.NewPCG(33, 34))
	const q = 50
	vctx, in, err := reference.VectorMassCase(rng, geom.Shape33, coeff.RankVector, true, q)
	require.NoError(t, err)
	qf, err := qfunction.NewVectorMass(vctx)
	require.NoError(t, err)

	host := NewHost(builder.Config{K: builder.EvenPartitions(q, 3)})
	out := qfunction.Alloc(qf.Outputs(), q)
	require.NoError(t, host.Run(context.Background(), qf, in, out))
	assert.InDeltaSlice(t, reference.VectorMassBatch(vctx, q, in), out[0], 1e-12)
}

func TestHost_Cancelled(t *testing.T) {
	qf, err := qfunction.NewMixedMass(qfunction.MixedMassContext{Shape: geom.Shape22, Kind: qfunction.ConstScalar, Coeff: 1})
	require.NoError(t, err)
	const q = 8
	in := qfunction.Alloc(qf.Inputs(), q)
	out := qfunction.Alloc(qf.Outputs(), q)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	host := NewHost(builder.Config{K: builder.EvenPartitions(q, 2)})
	err = host.Run(ctx, qf, in, out)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Equal(t, make([]float64, len(out[0])), out[0])
}

func TestCheckBuffers(t *testing.T) {
	qf, err := qfunction.NewMixedMass(qfunction.MixedMassContext{Shape: geom.Shape33, Kind: qfunction.QuadScalar})
	require.NoError(t, err)
	const q = 4
	in := qfunction.Alloc(qf.Inputs(), q)
	out := qfunction.Alloc(qf.Outputs(), q)
	require.NoError(t, CheckBuffers(qf, q, in, out))

	testCases := []struct {
		name    string
		in, out [][]float64
	}{
		{"missing input", in[:2], out},
		{"short jacobian", [][]float64{in[0], in[1][:9*q-1], in[2]}, out},
		{"no output", in, nil},
		{"short output", in, [][]float64{out[0][:q]}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckBuffers(qf, q, tc.in, tc.out)
			assert.True(t, errors.Is(err, ErrBufferSize), "got %v", err)
		})
	}

	host := NewHost(builder.Config{K: []int{q}})
	assert.ErrorIs(t, host.Run(context.Background(), qf, in[:1], out), ErrBufferSize)
}
