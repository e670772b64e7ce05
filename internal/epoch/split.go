package epoch

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Split is the DAO partition of the epoch pool, expressed in percent. It is
// re-read from disk on every epoch so governance changes apply without a
// restart.
type Split struct {
	MeritPct    decimal.Decimal `yaml:"merit" json:"merit"`
	BountyPct   decimal.Decimal `yaml:"bounty" json:"bounty"`
	DevPct      decimal.Decimal `yaml:"dev" json:"dev"`
	TreasuryPct decimal.Decimal `yaml:"treasury" json:"treasury"`
	Top3Pct     []float64       `yaml:"top3" json:"top3"`
}

// DefaultSplit mirrors the genesis DAO configuration.
func DefaultSplit() Split {
	return Split{
		MeritPct:    decimal.NewFromInt(60),
		BountyPct:   decimal.NewFromInt(25),
		DevPct:      decimal.NewFromInt(10),
		TreasuryPct: decimal.NewFromInt(5),
		Top3Pct:     []float64{60, 25, 15},
	}
}

// LoadSplit reads the DAO split file. A missing file falls back to the
// genesis defaults; a malformed one is an error.
func LoadSplit(path string) (Split, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSplit(), nil
		}
		return Split{}, fmt.Errorf("read dao split: %w", err)
	}

	var split Split
	if err := yaml.Unmarshal(raw, &split); err != nil {
		return Split{}, fmt.Errorf("parse dao split: %w", err)
	}
	if len(split.Top3Pct) == 0 {
		split.Top3Pct = DefaultSplit().Top3Pct
	}
	return split, nil
}

// SubPools carves the pool into the four DAO shares. Merit, bounty, and dev
// are direct percentage products; treasury takes the remainder so the four
// amounts always sum exactly to the pool.
type SubPools struct {
	Merit    decimal.Decimal
	Bounty   decimal.Decimal
	Dev      decimal.Decimal
	Treasury decimal.Decimal
}

// Partition applies the split to a pool amount.
func (s Split) Partition(pool decimal.Decimal) SubPools {
	merit := pool.Mul(s.MeritPct).Shift(-2)
	bounty := pool.Mul(s.BountyPct).Shift(-2)
	dev := pool.Mul(s.DevPct).Shift(-2)
	return SubPools{
		Merit:    merit,
		Bounty:   bounty,
		Dev:      dev,
		Treasury: pool.Sub(merit).Sub(bounty).Sub(dev),
	}
}
