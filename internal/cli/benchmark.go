package cli

import (
	"github.com/spf13/cobra"

	"github.com/AthenaOracle/athena-genesis/internal/app"
)

var benchmarkOpts app.BenchmarkOptions

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Analyse completed epochs against the hold baseline",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Benchmark(cmd.Context(), benchmarkOpts)
	},
}

func init() {
	benchmarkCmd.Flags().StringVar(&benchmarkOpts.ChartPath, "png", "", "Optional trend chart output path")
}
