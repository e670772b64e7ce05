package benchmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AthenaOracle/athena-genesis/internal/report"
)

func syntheticReport(epochID uint64, truth, aggregate, collectiveMIS float64, agents int) *report.Document {
	return &report.Document{
		Epoch:               epochID,
		Token:               "ATH",
		Pool:                decimal.RequireFromString("1000"),
		OracleTruth:         truth,
		AggregatePrediction: aggregate,
		CollectiveMIS:       collectiveMIS,
		AgentCount:          agents,
		OracleSources:       []string{"Coinbase", "Kraken"},
		ConfigVersion:       report.ConfigVersion,
	}
}

func syntheticSeries() (map[uint64]*report.Document, []uint64) {
	reports := map[uint64]*report.Document{
		1: syntheticReport(1, 100, 99, 0.90, 4),
		2: syntheticReport(2, 110, 109, 0.92, 5),
		3: syntheticReport(3, 105, 104, 0.94, 6),
	}
	return reports, []uint64{1, 2, 3}
}

func TestComputeNeedsTwoEpochs(t *testing.T) {
	reports := map[uint64]*report.Document{1: syntheticReport(1, 100, 99, 0.9, 4)}

	_, err := Compute(reports, []uint64{1}, nil)
	assert.ErrorContains(t, err, "at least 2 epochs")
}

func TestCompute(t *testing.T) {
	reports, epochs := syntheticSeries()
	ledger := []report.LedgerRow{
		{Epoch: 1, Amount: decimal.RequireFromString("600"), Category: report.CategoryMerit},
		{Epoch: 1, Amount: decimal.RequireFromString("250"), Category: report.CategoryBounty},
		{Epoch: 1, Amount: decimal.RequireFromString("100"), Category: report.CategoryDev},
		{Epoch: 2, Amount: decimal.RequireFromString("550"), Category: report.CategoryMerit},
	}

	results, err := Compute(reports, epochs, ledger)
	require.NoError(t, err)

	assert.Equal(t, 3, results.EpochsAnalyzed)
	assert.Equal(t, [2]uint64{1, 3}, results.EpochRange)
	assert.Equal(t, uint64(3), results.LatestEpoch)
	assert.Equal(t, []int{4, 5, 6}, results.AgentCountTrend)
	assert.Equal(t, []string{"Coinbase", "Kraken"}, results.OracleSourcesUsed)

	// Epoch 2: hold |110-100|/100 = 0.10, collective |109-110|/110 ~ 0.00909.
	// Epoch 3: hold |105-110|/110 ~ 0.04545, collective |104-105|/105 ~ 0.00952.
	require.Len(t, results.HoldErrors, 2)
	assert.InDelta(t, 0.10, results.HoldErrors[0], 1e-9)
	assert.InDelta(t, 0.009091, results.CollectiveErrors[0], 1e-6)
	assert.Equal(t, 2, results.OutperformanceCnt)
	assert.Equal(t, 100.0, results.OutperformanceRate)
	assert.Positive(t, results.ErrorReductionPct)

	assert.Equal(t, []float64{0.92, 0.94}, results.CollectiveMISTrend)
	assert.InDelta(t, 0.93, results.AvgCollectiveMIS, 1e-9)
	assert.InDelta(t, 0.02, results.CollectiveMISDelta, 1e-9)

	assert.Equal(t, 5.0, results.AvgAgentCount)
	assert.Equal(t, 50.0, results.AgentGrowthPct)

	// Dev rows are excluded from distributed rewards.
	assert.Equal(t, 1400.0, results.SimulatedROI.TotalRewardsDistributed)
	assert.Equal(t, 1000.0, results.SimulatedROI.InitialPool)
	assert.Equal(t, 40.0, results.SimulatedROI.ROIVsInitialPool)
}

func TestDeriveMetrics(t *testing.T) {
	reports, epochs := syntheticSeries()
	results, err := Compute(reports, epochs, nil)
	require.NoError(t, err)

	metrics := DeriveMetrics(results, "2026-08-28T12:00:00Z")
	assert.Equal(t, Version, metrics.Version)
	assert.Equal(t, uint64(3), metrics.LatestEpoch)
	assert.InDelta(t, 93.0, metrics.TruthRate, 1e-9)
	assert.Positive(t, metrics.TruthPowerIndex)
	require.Len(t, metrics.TruthPowerTrend, 2)
	require.Len(t, metrics.TruthRateTrend, 2)
	assert.InDelta(t, 92.0, metrics.TruthRateTrend[0], 1e-9)
}

func TestLoadReports(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, report.Write(filepath.Join(dir, "epoch_2_report.json"), syntheticReport(2, 110, 109, 0.92, 5)))
	require.NoError(t, report.Write(filepath.Join(dir, "epoch_1_report.json"), syntheticReport(1, 100, 99, 0.90, 4)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "epoch_3_report.json"), []byte("{corrupt"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	reports, epochs, err := LoadReports(dir)
	require.NoError(t, err)

	// Corrupt and unrelated files are skipped, the rest sorted by epoch.
	assert.Equal(t, []uint64{1, 2}, epochs)
	require.Len(t, reports, 2)
	assert.Equal(t, uint64(1), reports[1].Epoch)
}
