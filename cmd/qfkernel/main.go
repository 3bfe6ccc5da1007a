// Package main provides the qfkernel CLI: it runs quadrature data cases
// through the builders and checks the closed-form kernels against the dense
// reference.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// configFile is set by the --config flag.
	configFile string

	// cfg holds the merged configuration, loaded on startup.
	cfg *viper.Viper
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "qfkernel",
	Short: "qfkernel builds quadrature data for vector mass operators",
	Long: `qfkernel evaluates the mixed H(curl)-H(div) and the attribute-driven
vector mass quadrature functions on case files, and checks the closed-form
kernels against a generic dense linear algebra reference.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadConfig(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("bind flags: %w", err)
		}
		cfg = v
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./qfkernel.yaml)")
	rootCmd.PersistentFlags().Float64(cfgKeyTolerance, defaultTolerance, "relative tolerance for comparisons")
	rootCmd.PersistentFlags().Int(cfgKeyWorkers, defaultWorkers, "host partitions per batch")
	rootCmd.PersistentFlags().String(cfgKeyDevice, "", "OCCA backend (serial, openmp, cuda); empty runs on the host")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(shapesCmd)
}
