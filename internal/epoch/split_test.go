package epoch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionSumsExactly(t *testing.T) {
	pool := decimal.RequireFromString("1000")
	pools := DefaultSplit().Partition(pool)

	assert.True(t, pools.Merit.Equal(decimal.RequireFromString("600")), "merit: %s", pools.Merit)
	assert.True(t, pools.Bounty.Equal(decimal.RequireFromString("250")), "bounty: %s", pools.Bounty)
	assert.True(t, pools.Dev.Equal(decimal.RequireFromString("100")), "dev: %s", pools.Dev)
	assert.True(t, pools.Treasury.Equal(decimal.RequireFromString("50")), "treasury: %s", pools.Treasury)

	total := pools.Merit.Add(pools.Bounty).Add(pools.Dev).Add(pools.Treasury)
	assert.True(t, total.Equal(pool))
}

func TestPartitionAwkwardPool(t *testing.T) {
	// A pool that does not divide cleanly: treasury absorbs the remainder so
	// the four shares reconstitute the pool exactly.
	pool := decimal.RequireFromString("333.333333333333333337")
	split := Split{
		MeritPct:    decimal.RequireFromString("33.33"),
		BountyPct:   decimal.RequireFromString("33.33"),
		DevPct:      decimal.RequireFromString("16.67"),
		TreasuryPct: decimal.RequireFromString("16.67"),
		Top3Pct:     []float64{60, 25, 15},
	}
	pools := split.Partition(pool)

	total := pools.Merit.Add(pools.Bounty).Add(pools.Dev).Add(pools.Treasury)
	assert.True(t, total.Equal(pool), "shares must sum to the pool, got %s", total)
}

func TestLoadSplit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dao_split.yaml")
	require.NoError(t, os.WriteFile(path, []byte("merit: 50\nbounty: 30\ndev: 15\ntreasury: 5\ntop3: [50, 30, 20]\n"), 0o644))

	split, err := LoadSplit(path)
	require.NoError(t, err)
	assert.True(t, split.MeritPct.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, []float64{50, 30, 20}, split.Top3Pct)
}

func TestLoadSplitMissingFileUsesDefaults(t *testing.T) {
	split, err := LoadSplit(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.True(t, split.MeritPct.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, []float64{60, 25, 15}, split.Top3Pct)
}

func TestLoadSplitMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dao_split.yaml")
	require.NoError(t, os.WriteFile(path, []byte("merit: [not a number\n"), 0o644))

	_, err := LoadSplit(path)
	assert.Error(t, err)
}
