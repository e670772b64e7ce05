package epoch

import (
	"bytes"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	hardCapPct = decimal.New(10, -2)  // 10% of the epoch pool
	floorPct   = decimal.New(1, -4)   // 0.01% of the epoch pool
	softCapMul = decimal.NewFromInt(3)
)

// streakDecaySlope flattens repeat bounty winnings: weight = 1/(1+0.1n).
const streakDecaySlope = 0.1

// MaxBountyRanks caps the bounty set at the top three ranked wallets.
const MaxBountyRanks = 3

// AllocateMerit turns truth-power weights into per-wallet merit amounts under
// the cap/floor rules. Caps and floors are per-wallet local operations: the
// merit pool is an upper bound, not guaranteed fully distributed.
func AllocateMerit(weights []float64, meritPool, pool decimal.Decimal) []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(weights))
	for i, w := range weights {
		amounts[i] = decimal.NewFromFloat(w).Mul(meritPool)
	}

	hardCap := pool.Mul(hardCapPct)
	softCap := medianAmount(amounts).Mul(softCapMul)
	for i := range amounts {
		amounts[i] = decimal.Min(amounts[i], hardCap, softCap)
	}

	floor := pool.Mul(floorPct)
	raised := decimal.Min(floor, hardCap)
	for i := range amounts {
		if amounts[i].LessThan(floor) {
			amounts[i] = raised
		}
	}
	return amounts
}

// medianAmount picks the upper-middle element of the sorted amounts,
// matching the genesis allocator's median convention.
func medianAmount(amounts []decimal.Decimal) decimal.Decimal {
	if len(amounts) == 0 {
		return decimal.Zero
	}
	sorted := append([]decimal.Decimal(nil), amounts...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LessThan(sorted[j])
	})
	return sorted[len(sorted)/2]
}

// RankForBounty orders submission indices by (MIS desc, reputation desc,
// wallet asc) and returns the top ranks. The wallet tie-break makes the order
// total, so identical inputs always rank identically.
func RankForBounty(subs []Submission, scores []Score, reputation []float64) []int {
	order := make([]int, len(subs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if scores[i].MIS != scores[j].MIS {
			return scores[i].MIS > scores[j].MIS
		}
		if reputation[i] != reputation[j] {
			return reputation[i] > reputation[j]
		}
		return bytes.Compare(subs[i].Wallet[:], subs[j].Wallet[:]) < 0
	})
	if len(order) > MaxBountyRanks {
		order = order[:MaxBountyRanks]
	}
	return order
}

// AllocateBounty splits the bounty pool across the ranked positions. Base
// position shares come from the configured top-3 split, each decayed by the
// holder's streak count, then renormalized so the set sums to exactly 1. The
// last position receives the arithmetic remainder, so the whole bounty pool
// is always distributed to fixed-point precision.
func AllocateBounty(top3Pct []float64, streaks []int, bountyPool decimal.Decimal, tokenDecimals int) []decimal.Decimal {
	k := len(streaks)
	if k > len(top3Pct) {
		k = len(top3Pct)
	}
	if k == 0 {
		return nil
	}

	baseTotal := 0.0
	for _, pct := range top3Pct[:k] {
		baseTotal += pct
	}

	weights := make([]float64, k)
	weightTotal := 0.0
	for i := 0; i < k; i++ {
		base := 0.0
		if baseTotal > 0 {
			base = top3Pct[i] / baseTotal
		}
		decay := 1 / (1 + streakDecaySlope*float64(streaks[i]))
		weights[i] = base * decay
		weightTotal += weights[i]
	}

	amounts := make([]decimal.Decimal, k)
	if weightTotal <= 0 {
		// Degenerate config: hand the whole pool to the last position so the
		// exact-distribution invariant still holds.
		amounts[k-1] = bountyPool
		return amounts
	}

	distributed := decimal.Zero
	for i := 0; i < k-1; i++ {
		amount := decimal.NewFromFloat(weights[i] / weightTotal).Mul(bountyPool).Truncate(int32(tokenDecimals))
		amounts[i] = amount
		distributed = distributed.Add(amount)
	}
	amounts[k-1] = bountyPool.Sub(distributed)
	return amounts
}
