package state

import (
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	walletA = common.HexToAddress("0x1111111111111111111111111111111111111111")
	walletB = common.HexToAddress("0x2222222222222222222222222222222222222222")
	walletC = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func TestReputationInitAndUpdate(t *testing.T) {
	store, err := LoadReputation(filepath.Join(t.TempDir(), "reputation.json"))
	require.NoError(t, err)

	assert.Equal(t, 0.5, store.Get(walletA))

	// 0.9*0.5 + 0.1*0.99 = 0.549
	assert.Equal(t, 0.549, store.Update(walletA, 0.99))
	// 0.9*0.549 + 0.1*0 = 0.4941
	assert.Equal(t, 0.4941, store.Update(walletA, 0))

	// An untouched wallet still reads the initial value.
	assert.Equal(t, 0.5, store.Get(walletB))
}

func TestReputationRoundingAndClamp(t *testing.T) {
	store, err := LoadReputation(filepath.Join(t.TempDir(), "reputation.json"))
	require.NoError(t, err)

	// 0.9*0.5 + 0.1*(1/3) rounds to six decimal places.
	assert.Equal(t, 0.483333, store.Update(walletA, 1.0/3.0))

	for i := 0; i < 200; i++ {
		next := store.Update(walletA, 1)
		assert.LessOrEqual(t, next, 1.0)
		assert.GreaterOrEqual(t, next, 0.0)
	}
}

func TestReputationRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reputation.json")

	store, err := LoadReputation(path)
	require.NoError(t, err)
	store.Update(walletA, 0.9)
	store.Update(walletB, 0.1)
	require.NoError(t, store.Save())

	reloaded, err := LoadReputation(path)
	require.NoError(t, err)
	assert.Equal(t, store.Get(walletA), reloaded.Get(walletA))
	assert.Equal(t, store.Get(walletB), reloaded.Get(walletB))
}

func TestLoadReputationRejectsBadWallet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reputation.json")
	require.NoError(t, writeJSONAtomic(path, map[string]float64{"not-a-wallet": 0.5}))

	_, err := LoadReputation(path)
	assert.Error(t, err)
}

func TestStreakAdvance(t *testing.T) {
	store, err := LoadStreaks(filepath.Join(t.TempDir(), "streaks.json"))
	require.NoError(t, err)

	// Three straight epochs at the same positions.
	assert.Equal(t, []int{1, 1}, store.Advance([]common.Address{walletA, walletB}))
	store.Advance([]common.Address{walletA, walletB})
	updated := store.Advance([]common.Address{walletA, walletB})
	assert.Equal(t, []int{3, 3}, updated)

	// walletA slides to rank 2: its rank-1 counter resets, rank-2 starts at 1.
	updated = store.Advance([]common.Address{walletC, walletA})
	assert.Equal(t, []int{1, 1}, updated)
	assert.Equal(t, 0, store.Get(1, walletA))
	assert.Equal(t, 1, store.Get(2, walletA))
	assert.Equal(t, 0, store.Get(2, walletB))
}

func TestStreakRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streaks.json")

	store, err := LoadStreaks(path)
	require.NoError(t, err)
	store.Advance([]common.Address{walletA, walletB, walletC})
	require.NoError(t, store.Save())

	reloaded, err := LoadStreaks(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Get(1, walletA))
	assert.Equal(t, 1, reloaded.Get(2, walletB))
	assert.Equal(t, 1, reloaded.Get(3, walletC))
}

func TestLoadStreaksRejectsBadKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streaks.json")
	require.NoError(t, writeJSONAtomic(path, map[string]int{"0:0x1111111111111111111111111111111111111111": 2}))

	_, err := LoadStreaks(path)
	assert.Error(t, err)
}
