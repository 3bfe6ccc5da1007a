package main

import (
	"errors"
	"fmt"

	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/geom"
	"github.com/notargets/QFKernel/kernels"
	"github.com/notargets/QFKernel/qfunction"
	"github.com/spf13/cobra"
)

var shapesCmd = &cobra.Command{
	Use:   "shapes",
	Short: "List the supported shapes with their input and output sizes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-6s %-12s %-8s %s\n", "shape", "kind", "inputs", "qdata (dense/sym)")
		for _, s := range geom.Shapes {
			for _, kind := range []qfunction.Kind{qfunction.ConstScalar, qfunction.QuadScalar,
				qfunction.QuadVector, qfunction.QuadMatrix} {
				qf, err := qfunction.NewMixedMass(qfunction.MixedMassContext{Shape: s, Kind: kind})
				if errors.Is(err, qfunction.ErrUnsupported) {
					continue
				}
				if err != nil {
					return err
				}
				var sizes []int
				for _, f := range qf.Inputs() {
					sizes = append(sizes, f.Size)
				}
				fmt.Fprintf(w, "%-6v %-12s %-8s %d/%d\n", s, kind, fmt.Sprint(sizes),
					kernels.Dense.Size(s.Ref), kernels.Symmetric.Size(s.Ref))
			}
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-6s %-12s %s\n", "shape", "table rank", "qdata (+second)")
		for _, s := range geom.Shapes {
			for _, rank := range []coeff.Rank{coeff.RankScalar, coeff.RankVector, coeff.RankMatrix} {
				fmt.Fprintf(w, "%-6v %-12s %d+1\n", s, rank, s.PackedSize())
			}
		}
		return nil
	},
}
