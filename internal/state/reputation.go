// Package state holds the two persisted cross-epoch maps: wallet reputation
// and top-rank streak counters. Stores are loaded once at the start of a run,
// mutated in memory, and saved exactly once at the end; callers are
// responsible for serializing concurrent epoch runs against the same files.
package state

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// initialReputation is assigned to wallets on first sight.
	initialReputation = 0.5

	// EMA coefficients: reputation moves slowly so one good epoch cannot
	// whitewash a poor history.
	reputationCarry  = 0.9
	reputationUpdate = 0.1
)

// ReputationStore is a file-backed wallet→reputation map.
type ReputationStore struct {
	path   string
	scores map[common.Address]float64
}

// LoadReputation reads the reputation snapshot. A missing file yields an
// empty store.
func LoadReputation(path string) (*ReputationStore, error) {
	store := &ReputationStore{path: path, scores: make(map[common.Address]float64)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("read reputation snapshot: %w", err)
	}

	var snapshot map[string]float64
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("parse reputation snapshot: %w", err)
	}
	for wallet, score := range snapshot {
		if !common.IsHexAddress(wallet) {
			return nil, fmt.Errorf("reputation snapshot: invalid wallet %s", wallet)
		}
		store.scores[common.HexToAddress(wallet)] = score
	}
	return store, nil
}

// Get returns the wallet's reputation, initializing unseen wallets at 0.5.
func (s *ReputationStore) Get(wallet common.Address) float64 {
	if score, ok := s.scores[wallet]; ok {
		return score
	}
	return initialReputation
}

// Update folds this epoch's MIS into the wallet's EMA and returns the new
// value, rounded to six decimal places and clamped to [0,1] so snapshots stay
// stable across platforms.
func (s *ReputationStore) Update(wallet common.Address, mis float64) float64 {
	next := reputationCarry*s.Get(wallet) + reputationUpdate*mis
	next = math.Round(next*1e6) / 1e6
	if next < 0 {
		next = 0
	}
	if next > 1 {
		next = 1
	}
	s.scores[wallet] = next
	return next
}

// Snapshot exports the full mapping keyed by checksummed address.
func (s *ReputationStore) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.scores))
	for wallet, score := range s.scores {
		out[wallet.Hex()] = score
	}
	return out
}

// Save writes the snapshot atomically (temp file + rename).
func (s *ReputationStore) Save() error {
	return writeJSONAtomic(s.path, s.Snapshot())
}

func writeJSONAtomic(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
