// Package benchmark derives cross-epoch trend statistics from completed
// epoch reports and the reward ledger: how the collective estimate tracks the
// oracle truth versus a simple hold baseline, how accuracy and participation
// evolve, and how much of the pool has been distributed.
package benchmark

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/AthenaOracle/athena-genesis/internal/report"
)

// Version identifies the benchmark schema generation.
const Version = "3.0"

var reportNamePattern = regexp.MustCompile(`^epoch_(\d+)_report\.json$`)

// ROI summarises distributed rewards against the initial pool.
type ROI struct {
	TotalRewardsDistributed float64 `json:"totalRewardsDistributed"`
	InitialPool             float64 `json:"initialPool"`
	ROIVsInitialPool        float64 `json:"roiVsInitialPool"`
	AvgRewardPerEpoch       float64 `json:"avgRewardPerEpoch"`
}

// Results is the full benchmark outcome across epochs.
type Results struct {
	Version            string    `json:"version"`
	ConfigVersion      string    `json:"configVersion"`
	EpochsAnalyzed     int       `json:"epochsAnalyzed"`
	EpochRange         [2]uint64 `json:"epochRange"`
	LatestEpoch        uint64    `json:"latestEpoch"`
	AgentCountTrend    []int     `json:"agentCountTrend"`
	CollectiveMISTrend []float64 `json:"collectiveMisTrend"`
	HoldErrors         []float64 `json:"holdErrors"`
	CollectiveErrors   []float64 `json:"collectiveErrors"`
	OutperformanceCnt  int       `json:"outperformanceCount"`
	OracleSourcesUsed  []string  `json:"oracleSourcesUsed"`

	AvgHoldError       float64 `json:"avgHoldError"`
	AvgCollectiveError float64 `json:"avgCollectiveError"`
	ErrorReductionPct  float64 `json:"errorReductionPct"`
	OutperformanceRate float64 `json:"outperformanceRate"`
	AvgCollectiveMIS   float64 `json:"avgCollectiveMis"`
	CollectiveMISDelta float64 `json:"collectiveMisDelta"`
	AvgAgentCount      float64 `json:"avgAgentCount"`
	AgentGrowthPct     float64 `json:"agentGrowthPct"`

	SimulatedROI ROI `json:"simulatedRoi"`
}

// LoadReports reads every epoch report in dir, keyed and sorted by epoch id.
func LoadReports(dir string) (map[uint64]*report.Document, []uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read report dir: %w", err)
	}

	reports := make(map[uint64]*report.Document)
	for _, entry := range entries {
		match := reportNamePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		epochID, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		doc, err := report.Read(filepath.Join(dir, entry.Name()))
		if err != nil {
			// A corrupt report should not block analysis of the rest.
			continue
		}
		reports[epochID] = doc
	}

	epochs := make([]uint64, 0, len(reports))
	for epochID := range reports {
		epochs = append(epochs, epochID)
	}
	sort.Slice(epochs, func(i, j int) bool { return epochs[i] < epochs[j] })
	return reports, epochs, nil
}

// Compute derives the benchmark metrics. At least two epochs are required:
// the hold baseline needs a previous truth to move from.
func Compute(reports map[uint64]*report.Document, epochs []uint64, ledger []report.LedgerRow) (*Results, error) {
	if len(epochs) < 2 {
		return nil, fmt.Errorf("need at least 2 epochs for benchmark, have %d", len(epochs))
	}

	results := &Results{
		Version:        Version,
		ConfigVersion:  reports[epochs[0]].ConfigVersion,
		EpochsAnalyzed: len(epochs),
		EpochRange:     [2]uint64{epochs[0], epochs[len(epochs)-1]},
		LatestEpoch:    epochs[len(epochs)-1],
	}

	sources := make(map[string]bool)
	prevTruth := 0.0
	for i, epochID := range epochs {
		doc := reports[epochID]
		results.AgentCountTrend = append(results.AgentCountTrend, doc.AgentCount)
		for _, name := range doc.OracleSources {
			sources[name] = true
		}

		if i > 0 {
			holdErr := 0.0
			if prevTruth > 0 {
				holdErr = math.Abs(doc.OracleTruth-prevTruth) / prevTruth
			}
			collectiveErr := 0.0
			if doc.OracleTruth > 0 {
				collectiveErr = math.Abs(doc.AggregatePrediction-doc.OracleTruth) / doc.OracleTruth
			}
			results.HoldErrors = append(results.HoldErrors, holdErr)
			results.CollectiveErrors = append(results.CollectiveErrors, collectiveErr)
			results.CollectiveMISTrend = append(results.CollectiveMISTrend, doc.CollectiveMIS)
			if collectiveErr < holdErr {
				results.OutperformanceCnt++
			}
		}
		prevTruth = doc.OracleTruth
	}

	if len(results.HoldErrors) > 0 {
		results.AvgHoldError = round6(mean(results.HoldErrors))
		results.AvgCollectiveError = round6(mean(results.CollectiveErrors))
		if results.AvgHoldError > 0 {
			results.ErrorReductionPct = round2((1 - results.AvgCollectiveError/results.AvgHoldError) * 100)
		}
		results.OutperformanceRate = round2(float64(results.OutperformanceCnt) / float64(len(results.HoldErrors)) * 100)
	}

	if len(results.CollectiveMISTrend) > 0 {
		results.AvgCollectiveMIS = round6(mean(results.CollectiveMISTrend))
		if len(results.CollectiveMISTrend) > 1 {
			results.CollectiveMISDelta = round6(results.CollectiveMISTrend[len(results.CollectiveMISTrend)-1] - results.CollectiveMISTrend[0])
		}
	}

	if len(results.AgentCountTrend) > 0 {
		total := 0
		for _, n := range results.AgentCountTrend {
			total += n
		}
		results.AvgAgentCount = round1(float64(total) / float64(len(results.AgentCountTrend)))
		first := results.AgentCountTrend[0]
		last := results.AgentCountTrend[len(results.AgentCountTrend)-1]
		if len(results.AgentCountTrend) > 1 && first > 0 {
			results.AgentGrowthPct = round2((float64(last)/float64(first) - 1) * 100)
		}
	}

	totalRewards := 0.0
	for _, row := range ledger {
		if row.Category == report.CategoryMerit || row.Category == report.CategoryBounty {
			amount, _ := row.Amount.Float64()
			totalRewards += amount
		}
	}
	firstPool, _ := reports[epochs[0]].Pool.Float64()
	if firstPool > 0 {
		results.SimulatedROI = ROI{
			TotalRewardsDistributed: round2(totalRewards),
			InitialPool:             round2(firstPool),
			ROIVsInitialPool:        round2((totalRewards/firstPool - 1) * 100),
			AvgRewardPerEpoch:       round2(totalRewards / float64(len(epochs))),
		}
	}

	for name := range sources {
		results.OracleSourcesUsed = append(results.OracleSourcesUsed, name)
	}
	sort.Strings(results.OracleSourcesUsed)

	return results, nil
}

// Metrics is the condensed document consumed by the dashboard frontend.
type Metrics struct {
	Version            string    `json:"version"`
	Timestamp          string    `json:"timestamp"`
	EpochsAnalyzed     int       `json:"epochsAnalyzed"`
	LatestEpoch        uint64    `json:"latestEpoch"`
	TruthRate          float64   `json:"truthRate"`
	TruthPowerIndex    float64   `json:"truthPowerIndex"`
	AvgCollectiveMIS   float64   `json:"avgCollectiveMis"`
	AvgAgentCount      float64   `json:"avgAgentCount"`
	AgentGrowthPct     float64   `json:"agentGrowthPct"`
	ErrorReductionPct  float64   `json:"errorReductionPct"`
	OutperformanceRate float64   `json:"outperformanceRate"`
	TotalRewards       float64   `json:"totalRewardsDistributed"`
	ROIVsInitialPool   float64   `json:"roiVsInitialPool"`
	OracleSourcesUsed  []string  `json:"oracleSourcesUsed"`
	CollectiveMISTrend []float64 `json:"collectiveMisTrend"`
	TruthRateTrend     []float64 `json:"truthRateTrend"`
	TruthPowerTrend    []float64 `json:"truthPowerTrend"`
}

// DeriveMetrics condenses benchmark results into dashboard metrics. The
// truth power index scales the truth rate by participation: a high average
// from many agents means more than the same average from few.
func DeriveMetrics(results *Results, timestamp string) *Metrics {
	truthRate := round4(results.AvgCollectiveMIS * 100)
	m := &Metrics{
		Version:            Version,
		Timestamp:          timestamp,
		EpochsAnalyzed:     results.EpochsAnalyzed,
		LatestEpoch:        results.LatestEpoch,
		TruthRate:          truthRate,
		TruthPowerIndex:    round2(truthRate * math.Log10(results.AvgAgentCount+1)),
		AvgCollectiveMIS:   results.AvgCollectiveMIS,
		AvgAgentCount:      results.AvgAgentCount,
		AgentGrowthPct:     results.AgentGrowthPct,
		ErrorReductionPct:  results.ErrorReductionPct,
		OutperformanceRate: results.OutperformanceRate,
		TotalRewards:       results.SimulatedROI.TotalRewardsDistributed,
		ROIVsInitialPool:   results.SimulatedROI.ROIVsInitialPool,
		OracleSourcesUsed:  results.OracleSourcesUsed,
		CollectiveMISTrend: results.CollectiveMISTrend,
	}

	for i, mis := range results.CollectiveMISTrend {
		m.TruthRateTrend = append(m.TruthRateTrend, round4(mis*100))
		agents := 0
		// Error trends start at the second epoch, so offset into the agent
		// count trend by one.
		if i+1 < len(results.AgentCountTrend) {
			agents = results.AgentCountTrend[i+1]
		}
		m.TruthPowerTrend = append(m.TruthPowerTrend, round2(mis*100*math.Log10(float64(agents)+1)))
	}
	return m
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
