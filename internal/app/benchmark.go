package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AthenaOracle/athena-genesis/internal/benchmark"
	"github.com/AthenaOracle/athena-genesis/internal/report"
)

// Benchmark analyses all completed epoch reports against the ledger and
// writes the benchmark report, the trend CSV, the dashboard metrics, and —
// when requested — a trend chart PNG.
func (a *App) Benchmark(_ context.Context, opts BenchmarkOptions) error {
	reports, epochs, err := benchmark.LoadReports(a.Config.Paths.ReportDir)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return fmt.Errorf("no epoch reports found in %s", a.Config.Paths.ReportDir)
	}

	ledger, err := report.ReadLedger(a.Config.Paths.LedgerFile)
	if err != nil {
		return err
	}

	results, err := benchmark.Compute(reports, epochs, ledger)
	if err != nil {
		return err
	}

	outDir := a.Config.Paths.BenchmarkDir
	resultsPath := filepath.Join(outDir, "benchmark_report.json")
	if err := benchmark.WriteResults(resultsPath, results); err != nil {
		return err
	}

	trendPath := filepath.Join(outDir, "benchmark_trend.csv")
	if err := benchmark.WriteTrendCSV(trendPath, reports, epochs); err != nil {
		return err
	}

	metrics := benchmark.DeriveMetrics(results, time.Now().UTC().Format(time.RFC3339))
	metricsPath := filepath.Join(outDir, "metrics.json")
	if err := benchmark.WriteMetrics(metricsPath, metrics); err != nil {
		return err
	}

	if opts.ChartPath != "" {
		if err := benchmark.WriteTrendChart(opts.ChartPath, reports, epochs); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stdout, "Epochs analyzed: %d (%d..%d)\n", results.EpochsAnalyzed, results.EpochRange[0], results.EpochRange[1])
	fmt.Fprintf(os.Stdout, "Outperformance rate: %.2f%%\n", results.OutperformanceRate)
	fmt.Fprintf(os.Stdout, "Error reduction: %+.2f%%\n", results.ErrorReductionPct)
	fmt.Fprintf(os.Stdout, "Avg collective MIS: %.6f (delta %+.6f)\n", results.AvgCollectiveMIS, results.CollectiveMISDelta)
	fmt.Fprintf(os.Stdout, "Benchmark report -> %s\n", resultsPath)
	fmt.Fprintf(os.Stdout, "Trend CSV -> %s\n", trendPath)
	fmt.Fprintf(os.Stdout, "Metrics -> %s\n", metricsPath)
	return nil
}
