package epoch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

const (
	maxPrediction     = 1e9
	defaultConfidence = 0.8
)

// Kind discriminates the two submission variants.
type Kind int

const (
	// PointPrediction is a single predicted price.
	PointPrediction Kind = iota
	// RangePrediction is a [low, high] interval with a confidence.
	RangePrediction
)

// Submission is one agent's validated input for the epoch.
type Submission struct {
	Wallet  common.Address
	AgentID string
	Kind    Kind

	// Point variant.
	Value float64

	// Range variant.
	Low        float64
	High       float64
	Confidence float64
}

type rawSubmission struct {
	AgentID    string     `json:"agentId"`
	Prediction *float64   `json:"prediction"`
	Range      *[]float64 `json:"range"`
	Confidence *float64   `json:"confidence"`
}

// LoadSubmissions reads and validates the agents file. Any malformed wallet
// or submission is fatal: the epoch must not run on partial input.
func LoadSubmissions(path string) ([]Submission, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}
	return ParseSubmissions(raw)
}

// ParseSubmissions converts the untyped wallet→submission mapping into the
// tagged variant form, rejecting anything that does not fit either case.
func ParseSubmissions(raw []byte) ([]Submission, error) {
	var entries map[string]rawSubmission
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode agents file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no agents found")
	}

	subs := make([]Submission, 0, len(entries))
	for wallet, entry := range entries {
		sub, err := validate(wallet, entry)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	// Input maps carry no order; sort by wallet so downstream artifacts are
	// reproducible run to run.
	sort.Slice(subs, func(i, j int) bool {
		return bytes.Compare(subs[i].Wallet[:], subs[j].Wallet[:]) < 0
	})
	return subs, nil
}

func validate(wallet string, entry rawSubmission) (Submission, error) {
	if len(wallet) != 42 || !common.IsHexAddress(wallet) {
		return Submission{}, fmt.Errorf("agent wallet invalid: %s", wallet)
	}

	sub := Submission{
		Wallet:  common.HexToAddress(wallet),
		AgentID: entry.AgentID,
	}

	switch {
	case entry.Prediction != nil && entry.Range != nil:
		return Submission{}, fmt.Errorf("agent %s: supply either prediction or range, not both", wallet)
	case entry.Prediction != nil:
		value := *entry.Prediction
		if value < 0 || value > maxPrediction {
			return Submission{}, fmt.Errorf("agent %s: prediction out of range", wallet)
		}
		sub.Kind = PointPrediction
		sub.Value = value
	case entry.Range != nil:
		pair := *entry.Range
		if len(pair) != 2 {
			return Submission{}, fmt.Errorf("agent %s: range must have exactly two elements", wallet)
		}
		low, high := pair[0], pair[1]
		if low > high {
			return Submission{}, fmt.Errorf("agent %s: range low exceeds high", wallet)
		}
		if low < 0 || high > maxPrediction {
			return Submission{}, fmt.Errorf("agent %s: range out of bounds", wallet)
		}
		sub.Kind = RangePrediction
		sub.Low = low
		sub.High = high
		sub.Confidence = defaultConfidence
		if entry.Confidence != nil {
			conf := *entry.Confidence
			if conf < 0 || conf > 1 {
				return Submission{}, fmt.Errorf("agent %s: confidence must be within [0,1]", wallet)
			}
			sub.Confidence = conf
		}
	default:
		return Submission{}, fmt.Errorf("agent %s: missing or invalid 'prediction'", wallet)
	}

	return sub, nil
}
