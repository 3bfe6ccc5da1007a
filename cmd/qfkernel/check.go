package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/geom"
	"github.com/notargets/QFKernel/kernels"
	"github.com/notargets/QFKernel/qfunction"
	"github.com/notargets/QFKernel/reference"
	"github.com/notargets/QFKernel/runner"
	"github.com/notargets/QFKernel/runner/builder"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

var (
	checkPoints int
	checkSeed   uint64
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare every kernel with the dense reference on random geometry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := checker{
			w:       cmd.OutOrStdout(),
			rng:     rand.New(rand.NewPCG(checkSeed, checkSeed)),
			q:       checkPoints,
			tol:     cfg.GetFloat64(cfgKeyTolerance),
			workers: cfg.GetInt(cfgKeyWorkers),
		}
		failed, err := c.all(cmd.Context())
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d configurations differ from the reference", failed)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().IntVar(&checkPoints, "points", 64, "quadrature points per configuration")
	checkCmd.Flags().Uint64Var(&checkSeed, "seed", 1, "random seed")
}

type checker struct {
	w       io.Writer
	rng     *rand.Rand
	q       int
	tol     float64
	workers int
}

// all checks every mixed mass and vector mass configuration and returns the
// number that failed.
func (c *checker) all(ctx context.Context) (failed int, err error) {
	for _, s := range geom.Shapes {
		for _, kind := range []qfunction.Kind{qfunction.ConstScalar, qfunction.QuadScalar,
			qfunction.QuadVector, qfunction.QuadMatrix} {
			for _, layout := range []kernels.Layout{kernels.Dense, kernels.Transposed, kernels.Symmetric} {
				ok, err := c.mixed(ctx, qfunction.MixedMassContext{
					Shape: s, Kind: kind, Layout: layout, Coeff: 1 + c.rng.Float64(),
				})
				if err != nil {
					return failed, err
				}
				if !ok {
					failed++
				}
			}
		}
		for _, rank := range []coeff.Rank{coeff.RankScalar, coeff.RankVector, coeff.RankMatrix} {
			for _, second := range []bool{false, true} {
				ok, err := c.vector(ctx, s, rank, second)
				if err != nil {
					return failed, err
				}
				if !ok {
					failed++
				}
			}
		}
	}
	return failed, nil
}

func (c *checker) mixed(ctx context.Context, mctx qfunction.MixedMassContext) (bool, error) {
	qf, err := qfunction.NewMixedMass(mctx)
	if err != nil {
		return false, err
	}
	in := reference.MixedMassInputs(c.rng, mctx, c.q)
	want, err := reference.MixedMassBatch(mctx, c.q, in)
	if err != nil {
		return false, err
	}
	name := fmt.Sprintf("mixed  %v %-12s %-10s", mctx.Shape, mctx.Kind, mctx.Layout)
	return c.compare(ctx, name, qf, in, want)
}

func (c *checker) vector(ctx context.Context, s geom.Shape, rank coeff.Rank, second bool) (bool, error) {
	vctx, in, err := reference.VectorMassCase(c.rng, s, rank, second, c.q)
	if err != nil {
		return false, err
	}
	qf, err := qfunction.NewVectorMass(vctx)
	if err != nil {
		return false, err
	}
	name := fmt.Sprintf("vector %v %-12s second=%-5t", s, rank, second)
	return c.compare(ctx, name, qf, in, reference.VectorMassBatch(vctx, c.q, in))
}

func (c *checker) compare(ctx context.Context, name string, qf qfunction.QFunction,
	in [][]float64, want []float64) (bool, error) {
	out := qfunction.Alloc(qf.Outputs(), c.q)
	host := runner.NewHost(builder.Config{K: builder.EvenPartitions(c.q, c.workers)})
	host.Workers = c.workers
	if err := host.Run(ctx, qf, in, out); err != nil {
		return false, err
	}
	got := out[0]
	ok := floats.EqualFunc(got, want, func(a, b float64) bool {
		return scalar.EqualWithinAbsOrRel(a, b, c.tol, c.tol)
	})
	status := "ok"
	if !ok {
		status = "FAIL"
	}
	e, k := maxRelErr(got, want)
	fmt.Fprintf(c.w, "%s %-4s max rel err %.3g\n", name, status, e)
	if !ok {
		c.diagnose(qf, in, k%c.q)
	}
	return ok, nil
}

// maxRelErr returns the largest relative difference and its index.
func maxRelErr(got, want []float64) (e float64, at int) {
	for i := range got {
		d := math.Abs(got[i] - want[i])
		if m := math.Max(math.Abs(want[i]), 1); d/m > e {
			e, at = d/m, i
		}
	}
	return e, at
}

// diagnose prints the geometric factors qf read at point i: J for mixed mass
// and adj(J)^T for vector mass.
func (c *checker) diagnose(qf qfunction.QFunction, in [][]float64, i int) {
	var (
		s           geom.Shape
		field, name string
		offset      int
	)
	switch qf := qf.(type) {
	case *qfunction.MixedMass:
		s, field, name = qf.Context().Shape, "J", "J"
	case *qfunction.VectorMass:
		s, field, name, offset = qf.Context().Shape, "geom", "adjJt", 2*c.q
	default:
		return
	}
	for f, fd := range qf.Inputs() {
		if fd.Name != field {
			continue
		}
		local := make([]float64, s.Components())
		geom.Reconstruct(s, in[f][offset:], i, c.q, local)
		fmt.Fprintf(c.w, "  point %d %s %.6g det %.6g\n", i, name, local, kernels.Det(s, local))
	}
}
