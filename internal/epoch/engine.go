package epoch

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/AthenaOracle/athena-genesis/internal/merkle"
	"github.com/AthenaOracle/athena-genesis/internal/oracle"
)

// Params are the per-run inputs supplied by the caller.
type Params struct {
	Epoch         uint64
	Pulse         uint64
	Pool          decimal.Decimal
	TokenDecimals int
	Alpha         float64
	EmitProofs    bool
	DryRun        bool
}

// ReputationSource is the engine's view of the persisted reputation map.
type ReputationSource interface {
	Get(wallet common.Address) float64
	Update(wallet common.Address, mis float64) float64
}

// StreakSource is the engine's view of the persisted streak counters.
type StreakSource interface {
	Advance(holders []common.Address) []int
}

// Outcome is the fully-computed result for one agent.
type Outcome struct {
	Submission Submission
	Score      Score
	Reputation float64
	Weight     float64
	Merit      decimal.Decimal
	Bounty     decimal.Decimal
	Total      decimal.Decimal
	AmountWei  *big.Int

	// Rank is 1..3 for bounty holders, 0 otherwise; Streak is the updated
	// consecutive-epoch count at that rank.
	Rank   int
	Streak int
}

// Result is the immutable output of one epoch run, computed entirely in
// memory before anything is written.
type Result struct {
	Params   Params
	Truth    oracle.Consensus
	Split    Split
	Pools    SubPools
	Outcomes []Outcome
	Leaves   [][32]byte
	Root     [32]byte
	Proofs   [][][32]byte
}

// Engine runs the scoring and allocation pipeline for one epoch. It performs
// no I/O: the oracle consensus is computed by the caller beforehand and all
// persistence happens after Run returns.
type Engine struct {
	logger zerolog.Logger
}

// NewEngine constructs the epoch engine.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{logger: logger.With().Str("component", "epoch_engine").Logger()}
}

// Run executes one epoch: score, update reputation, weight, allocate merit
// and bounty, advance streaks, and build the Merkle commitment.
func (e *Engine) Run(params Params, subs []Submission, truth oracle.Consensus, split Split, reputation ReputationSource, streaks StreakSource) (*Result, error) {
	if len(subs) == 0 {
		return nil, fmt.Errorf("no agents found")
	}
	if params.Pool.Sign() <= 0 {
		return nil, fmt.Errorf("pool must be greater than zero")
	}

	scores := ScoreAll(subs, truth.Price)

	mis := make([]float64, len(subs))
	reps := make([]float64, len(subs))
	for i := range subs {
		mis[i] = scores[i].MIS
		reps[i] = reputation.Update(subs[i].Wallet, mis[i])
	}

	weights := TruthPowerWeights(mis, reps, params.Alpha)
	pools := split.Partition(params.Pool)
	merit := AllocateMerit(weights, pools.Merit, params.Pool)

	ranked := RankForBounty(subs, scores, reps)
	holders := make([]common.Address, len(ranked))
	for pos, idx := range ranked {
		holders[pos] = subs[idx].Wallet
	}
	streakCounts := streaks.Advance(holders)
	bounty := AllocateBounty(split.Top3Pct, streakCounts, pools.Bounty, params.TokenDecimals)

	outcomes := make([]Outcome, len(subs))
	for i := range subs {
		outcomes[i] = Outcome{
			Submission: subs[i],
			Score:      scores[i],
			Reputation: reps[i],
			Weight:     weights[i],
			Merit:      merit[i],
			Bounty:     decimal.Zero,
		}
	}
	for pos, idx := range ranked {
		outcomes[idx].Rank = pos + 1
		outcomes[idx].Streak = streakCounts[pos]
		outcomes[idx].Bounty = bounty[pos]
	}

	weiScale := int32(params.TokenDecimals)
	leaves := make([][32]byte, len(subs))
	for i := range outcomes {
		outcomes[i].Total = outcomes[i].Merit.Add(outcomes[i].Bounty)
		outcomes[i].AmountWei = outcomes[i].Total.Shift(weiScale).Truncate(0).BigInt()

		leaf, err := merkle.Leaf(outcomes[i].Submission.Wallet, outcomes[i].AmountWei, params.Epoch, params.Pulse)
		if err != nil {
			return nil, fmt.Errorf("bad reward for %s: %s: %w", outcomes[i].Submission.Wallet.Hex(), outcomes[i].Total, err)
		}
		leaves[i] = leaf
	}

	result := &Result{
		Params:   params,
		Truth:    truth,
		Split:    split,
		Pools:    pools,
		Outcomes: outcomes,
		Leaves:   leaves,
		Root:     merkle.Root(leaves),
	}
	if params.EmitProofs {
		result.Proofs = merkle.Proofs(leaves)
	}

	e.logger.Info().
		Uint64("epoch", params.Epoch).
		Int("agents", len(subs)).
		Str("pool", params.Pool.String()).
		Str("root", common.Hash(result.Root).Hex()).
		Msg("epoch computed")

	return result, nil
}

// AverageMIS is the population mean accuracy for the run.
func (r *Result) AverageMIS() float64 {
	if len(r.Outcomes) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range r.Outcomes {
		sum += o.Score.MIS
	}
	return sum / float64(len(r.Outcomes))
}

// AggregatePrediction is the truth-power-weighted collective price estimate;
// ranges contribute their midpoint. With an all-zero weight set it falls back
// to the unweighted mean.
func (r *Result) AggregatePrediction() float64 {
	if len(r.Outcomes) == 0 {
		return 0
	}

	weightTotal := 0.0
	weighted := 0.0
	plain := 0.0
	for _, o := range r.Outcomes {
		value := o.Submission.Value
		if o.Submission.Kind == RangePrediction {
			value = (o.Submission.Low + o.Submission.High) / 2
		}
		weighted += o.Weight * value
		weightTotal += o.Weight
		plain += value
	}
	if weightTotal <= 0 {
		return plain / float64(len(r.Outcomes))
	}
	return weighted / weightTotal
}
