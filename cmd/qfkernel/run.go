package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/notargets/QFKernel/qfunction"
	"github.com/notargets/QFKernel/runner"
	"github.com/notargets/QFKernel/runner/builder"
	"github.com/notargets/QFKernel/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var runCmd = &cobra.Command{
	Use:   "run <case.yaml>",
	Short: "Evaluate a case file and print its quadrature data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := readCase(args[0])
		if err != nil {
			return err
		}
		qf, in, err := c.build()
		if err != nil {
			return err
		}
		q := len(c.Points)
		out := qfunction.Alloc(qf.Outputs(), q)
		k := builder.EvenPartitions(q, cfg.GetInt(cfgKeyWorkers))

		if backend := cfg.GetString(cfgKeyDevice); backend != "" {
			device, err := utils.CreateDevice(backend)
			if err != nil {
				return err
			}
			defer device.Free()
			kr := runner.NewRunner(device, builder.Config{K: k})
			defer kr.Free()
			if err := kr.Run(qf, in, out); err != nil {
				return err
			}
		} else {
			host := runner.NewHost(builder.Config{K: k})
			host.Workers = cfg.GetInt(cfgKeyWorkers)
			if err := host.Run(cmd.Context(), qf, in, out); err != nil {
				return err
			}
		}

		if err := qfunction.CheckFinite(qf, q, out); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
		return writeQData(cmd.OutOrStdout(), cfg.GetString(cfgKeyFormat), qf, q, out)
	},
}

func init() {
	runCmd.Flags().String(cfgKeyFormat, defaultFormat, "output format (text, yaml)")
}

type pointQData struct {
	Point int       `yaml:"point"`
	QData []float64 `yaml:"qdata"`
}

// writeQData prints the output of every point, gathering its components
// from the strided buffers.
func writeQData(w io.Writer, format string, qf qfunction.QFunction, q int, out [][]float64) error {
	points := make([]pointQData, q)
	for i := range points {
		points[i].Point = i
		for f, field := range qf.Outputs() {
			for k := 0; k < field.Size; k++ {
				points[i].QData = append(points[i].QData, out[f][k*q+i])
			}
		}
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(points)
	case "text", "":
		for _, p := range points {
			vals := make([]string, len(p.QData))
			for k, v := range p.QData {
				vals[k] = fmt.Sprintf("%.15g", v)
			}
			fmt.Fprintf(w, "%d: %s\n", p.Point, strings.Join(vals, " "))
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}
