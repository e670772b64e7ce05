// Package report turns a computed epoch result into the published artifacts:
// the immutable epoch report document, the append-only ledger rows, and the
// audit trail record. It contains no allocation logic of its own.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/AthenaOracle/athena-genesis/internal/epoch"
	"github.com/AthenaOracle/athena-genesis/internal/oracle"
)

// ConfigVersion identifies the report schema generation.
const ConfigVersion = "3.0"

// Claim is one wallet's reward row in the report.
type Claim struct {
	Wallet     string          `json:"wallet"`
	Amount     decimal.Decimal `json:"amount"`
	AmountWei  string          `json:"amountWei"`
	MIS        float64         `json:"mis"`
	Reputation float64         `json:"reputation"`
	Merit      decimal.Decimal `json:"merit"`
	Bounty     decimal.Decimal `json:"bounty"`
	TruthPower float64         `json:"truthPower"`
	ZScore     float64         `json:"zScore"`
	Tag        string          `json:"tag"`
}

// Top3Entry summarises one bounty position.
type Top3Entry struct {
	Position int             `json:"position"`
	Wallet   string          `json:"wallet"`
	MIS      float64         `json:"mis"`
	Streak   int             `json:"streak"`
	Bounty   decimal.Decimal `json:"bounty"`
}

// Document is the epoch report written once per epoch and never mutated.
type Document struct {
	Epoch               uint64              `json:"epoch"`
	Pulse               uint64              `json:"pulse,omitempty"`
	Token               string              `json:"token"`
	Pool                decimal.Decimal     `json:"pool"`
	OracleTruth         float64             `json:"oracleTruth"`
	AggregatePrediction float64             `json:"aggregatePrediction"`
	CollectiveMIS       float64             `json:"collectiveMIS"`
	MerkleRoot          string              `json:"merkleRoot"`
	Claims              []Claim             `json:"claims"`
	OracleSources       []string            `json:"oracleSources"`
	AgentCount          int                 `json:"agentCount"`
	TruthRate           float64             `json:"truthRate"`
	DAOSplit            epoch.Split         `json:"daoSplit"`
	Top3                []Top3Entry         `json:"top3"`
	Streaks             map[string]int      `json:"streaks"`
	OracleHealth        oracle.Health       `json:"oracleHealth"`
	Proofs              map[string][]string `json:"proofs,omitempty"`
	GeneratedAt         string              `json:"generatedAt"`
	ConfigVersion       string              `json:"configVersion"`
}

// Assemble composes the final report document from an epoch result. Pure
// aggregation: every number in the document was computed upstream.
func Assemble(result *epoch.Result, token string, streaks map[string]int, generatedAt time.Time) *Document {
	doc := &Document{
		Epoch:               result.Params.Epoch,
		Pulse:               result.Params.Pulse,
		Token:               token,
		Pool:                result.Params.Pool,
		OracleTruth:         result.Truth.Price,
		AggregatePrediction: result.AggregatePrediction(),
		CollectiveMIS:       round6(result.AverageMIS()),
		MerkleRoot:          common.Hash(result.Root).Hex(),
		OracleSources:       result.Truth.Sources,
		AgentCount:          len(result.Outcomes),
		TruthRate:           round4(result.AverageMIS() * 100),
		DAOSplit:            result.Split,
		Streaks:             streaks,
		OracleHealth:        result.Truth.Health,
		GeneratedAt:         generatedAt.UTC().Format(time.RFC3339),
		ConfigVersion:       ConfigVersion,
	}

	doc.Claims = make([]Claim, len(result.Outcomes))
	for i, o := range result.Outcomes {
		doc.Claims[i] = Claim{
			Wallet:     o.Submission.Wallet.Hex(),
			Amount:     o.Total.Round(8),
			AmountWei:  o.AmountWei.String(),
			MIS:        round6(o.Score.MIS),
			Reputation: o.Reputation,
			Merit:      o.Merit.Round(8),
			Bounty:     o.Bounty.Round(8),
			TruthPower: round6(o.Weight),
			ZScore:     round6(o.Score.ZScore),
			Tag:        o.Score.Tag,
		}
		if o.Rank > 0 {
			doc.Top3 = append(doc.Top3, Top3Entry{
				Position: o.Rank,
				Wallet:   o.Submission.Wallet.Hex(),
				MIS:      round6(o.Score.MIS),
				Streak:   o.Streak,
				Bounty:   o.Bounty.Round(8),
			})
		}
	}
	sortTop3(doc.Top3)

	if result.Proofs != nil {
		doc.Proofs = make(map[string][]string, len(result.Proofs))
		for idx, path := range result.Proofs {
			hexPath := make([]string, len(path))
			for j, sibling := range path {
				hexPath[j] = common.Hash(sibling).Hex()
			}
			doc.Proofs[fmt.Sprint(idx)] = hexPath
		}
	}

	return doc
}

func sortTop3(entries []Top3Entry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Position < entries[j-1].Position; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// Path returns the report file location for an epoch.
func Path(dir string, epochID uint64) string {
	return filepath.Join(dir, fmt.Sprintf("epoch_%d_report.json", epochID))
}

// Write persists the document as indented JSON.
func Write(path string, doc *Document) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Read loads a previously written report document.
func Read(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &doc, nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
