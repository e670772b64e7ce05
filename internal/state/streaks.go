package state

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// StreakStore tracks how many consecutive epochs a wallet has held a given
// bounty rank position. Keys are "<position>:<wallet>" with 1-based
// positions. Continuity is per (wallet, position): a wallet sliding from rank
// 1 to rank 2 resets its rank-1 counter and starts rank 2 at 1 unless it held
// rank 2 before.
type StreakStore struct {
	path   string
	counts map[string]int
}

// LoadStreaks reads the streak snapshot. A missing file yields an empty
// store.
func LoadStreaks(path string) (*StreakStore, error) {
	store := &StreakStore{path: path, counts: make(map[string]int)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("read streak snapshot: %w", err)
	}

	var snapshot map[string]int
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("parse streak snapshot: %w", err)
	}
	for key, count := range snapshot {
		if _, _, err := splitKey(key); err != nil {
			return nil, fmt.Errorf("streak snapshot: %w", err)
		}
		store.counts[key] = count
	}
	return store, nil
}

// Advance records this epoch's ranked holders. Every held (position, wallet)
// pair is incremented (new entrants start at 1); every stored pair not held
// this epoch is reset to 0. Returns the updated count per position,
// index-aligned with holders.
func (s *StreakStore) Advance(holders []common.Address) []int {
	held := make(map[string]bool, len(holders))
	updated := make([]int, len(holders))
	for i, wallet := range holders {
		key := streakKey(i+1, wallet)
		held[key] = true
		updated[i] = s.counts[key] + 1
	}

	for key := range s.counts {
		if !held[key] {
			s.counts[key] = 0
		}
	}
	for i, wallet := range holders {
		s.counts[streakKey(i+1, wallet)] = updated[i]
	}
	return updated
}

// Get returns the stored count for a (position, wallet) pair.
func (s *StreakStore) Get(position int, wallet common.Address) int {
	return s.counts[streakKey(position, wallet)]
}

// Snapshot exports the full mapping.
func (s *StreakStore) Snapshot() map[string]int {
	out := make(map[string]int, len(s.counts))
	for key, count := range s.counts {
		out[key] = count
	}
	return out
}

// Save writes the snapshot atomically.
func (s *StreakStore) Save() error {
	return writeJSONAtomic(s.path, s.Snapshot())
}

func streakKey(position int, wallet common.Address) string {
	return strconv.Itoa(position) + ":" + wallet.Hex()
}

func splitKey(key string) (int, common.Address, error) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return 0, common.Address{}, fmt.Errorf("invalid streak key %q", key)
	}
	position, err := strconv.Atoi(parts[0])
	if err != nil || position < 1 {
		return 0, common.Address{}, fmt.Errorf("invalid streak position in key %q", key)
	}
	if !common.IsHexAddress(parts[1]) {
		return 0, common.Address{}, fmt.Errorf("invalid streak wallet in key %q", key)
	}
	return position, common.HexToAddress(parts[1]), nil
}
