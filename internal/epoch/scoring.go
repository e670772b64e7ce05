package epoch

import "math"

// Scoring constants. The range guards exist to make degenerate submissions
// unprofitable: an interval wider than half the truth scores nothing, and a
// razor-thin interval cannot claim more than 0.9 confidence.
const (
	maxRangeWidth    = 0.5
	narrowRangeWidth = 0.05
	confidenceCap    = 0.9
	widthPenaltySlope = 10.0
)

// Tags assigned from the population z-score.
const (
	TagElite      = "elite"
	TagOutlier    = "outlier"
	TagConsistent = "consistent"
)

// Score is the per-agent outcome of one epoch's scoring pass.
type Score struct {
	MIS    float64
	ZScore float64
	Tag    string
}

// ScoreSubmission computes the Market Insight Score for one submission
// against the consensus truth. Truth must be positive; anything else scores
// zero.
func ScoreSubmission(sub Submission, truth float64) float64 {
	if truth <= 0 {
		return 0
	}

	switch sub.Kind {
	case PointPrediction:
		err := math.Abs(sub.Value-truth) / truth
		return math.Max(0, 1-err)
	case RangePrediction:
		width := math.Abs(sub.High-sub.Low) / truth
		if width > maxRangeWidth {
			return 0
		}

		confidence := sub.Confidence
		if width < narrowRangeWidth && confidence > confidenceCap {
			confidence = confidenceCap
		}

		hit := 0.0
		if sub.Low <= truth && truth <= sub.High {
			hit = 1.0
		}

		penalty := 1 / (1 + widthPenaltySlope*width)
		return clamp01(hit * confidence * penalty)
	default:
		return 0
	}
}

// ScoreAll scores every submission and then assigns population z-scores and
// qualitative tags. The returned slice is index-aligned with subs.
func ScoreAll(subs []Submission, truth float64) []Score {
	scores := make([]Score, len(subs))
	misValues := make([]float64, len(subs))
	for i, sub := range subs {
		misValues[i] = ScoreSubmission(sub, truth)
		scores[i].MIS = misValues[i]
	}

	mean, stdev := populationStats(misValues)
	for i := range scores {
		z := (scores[i].MIS - mean) / stdev
		scores[i].ZScore = z
		switch {
		case z > 1:
			scores[i].Tag = TagElite
		case z < -1:
			scores[i].Tag = TagOutlier
		default:
			scores[i].Tag = TagConsistent
		}
	}
	return scores
}

// populationStats returns the population mean and standard deviation with a
// deviation floor of 1.0 so uniform score sets do not divide by zero.
func populationStats(values []float64) (mean, stdev float64) {
	if len(values) == 0 {
		return 0, 1
	}

	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	stdev = math.Sqrt(variance)
	if stdev < 1 {
		stdev = 1
	}
	return mean, stdev
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
