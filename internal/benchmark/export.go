package benchmark

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/AthenaOracle/athena-genesis/internal/report"
)

// WriteResults persists the full benchmark document as indented JSON.
func WriteResults(path string, results *Results) error {
	return writeJSON(path, results)
}

// WriteMetrics persists the dashboard metrics document.
func WriteMetrics(path string, metrics *Metrics) error {
	return writeJSON(path, metrics)
}

// WriteTrendCSV emits one row per epoch comparing the collective estimate to
// the hold baseline.
func WriteTrendCSV(path string, reports map[uint64]*report.Document, epochs []uint64) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"epoch", "oracle_truth", "aggregate_pred", "hold_error", "collective_error", "outperformed", "collective_mis", "agent_count"}
	if err := writer.Write(header); err != nil {
		return err
	}

	prevTruth := 0.0
	for i, epochID := range epochs {
		doc := reports[epochID]
		holdErr, collectiveErr := 0.0, 0.0
		outperformed := "N/A"
		if i > 0 {
			if prevTruth > 0 {
				holdErr = (doc.OracleTruth - prevTruth) / prevTruth
				if holdErr < 0 {
					holdErr = -holdErr
				}
			}
			if doc.OracleTruth > 0 {
				collectiveErr = (doc.AggregatePrediction - doc.OracleTruth) / doc.OracleTruth
				if collectiveErr < 0 {
					collectiveErr = -collectiveErr
				}
			}
			if collectiveErr < holdErr {
				outperformed = "YES"
			} else {
				outperformed = "NO"
			}
		}

		record := []string{
			strconv.FormatUint(epochID, 10),
			strconv.FormatFloat(doc.OracleTruth, 'f', 2, 64),
			strconv.FormatFloat(doc.AggregatePrediction, 'f', 2, 64),
			strconv.FormatFloat(holdErr, 'f', 6, 64),
			strconv.FormatFloat(collectiveErr, 'f', 6, 64),
			outperformed,
			strconv.FormatFloat(doc.CollectiveMIS, 'f', 6, 64),
			strconv.Itoa(doc.AgentCount),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
		prevTruth = doc.OracleTruth
	}

	return nil
}

// WriteTrendChart renders oracle truth against the collective estimate.
func WriteTrendChart(path string, reports map[uint64]*report.Document, epochs []uint64) error {
	if len(epochs) < 2 {
		return fmt.Errorf("need at least 2 epochs for a trend chart")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	xs := make([]float64, len(epochs))
	truths := make([]float64, len(epochs))
	aggregates := make([]float64, len(epochs))
	for i, epochID := range epochs {
		xs[i] = float64(epochID)
		truths[i] = reports[epochID].OracleTruth
		aggregates[i] = reports[epochID].AggregatePrediction
	}

	graph := chart.Chart{
		Title: "Collective estimate vs oracle truth",
		XAxis: chart.XAxis{Name: "epoch"},
		YAxis: chart.YAxis{Name: "price"},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "oracle truth", XValues: xs, YValues: truths},
			chart.ContinuousSeries{Name: "collective estimate", XValues: xs, YValues: aggregates},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func writeJSON(path string, v any) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
