package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/AthenaOracle/athena-genesis/internal/config"
	"github.com/AthenaOracle/athena-genesis/internal/notify"
	"github.com/AthenaOracle/athena-genesis/internal/oracle"
	"github.com/AthenaOracle/athena-genesis/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	// Aggregator is replaceable for tests and simulations.
	Aggregator ConsensusProvider
}

// ConsensusProvider is the oracle boundary the epoch workflow depends on.
type ConsensusProvider interface {
	Consensus(ctx context.Context, target *oracle.Target, policy oracle.FallbackPolicy) (oracle.Consensus, error)
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	appLogger := logger.With().Str("component", "app").Logger()
	return &App{
		Config:     cfg,
		Logger:     appLogger,
		Aggregator: oracle.NewAggregator(oracle.NewHTTPFetcher(logger), logger),
	}
}

func (a *App) newNotifier() notify.Notifier {
	if a.Config.Notify.Telegram.Enabled {
		cfg := a.Config.Notify.Telegram
		return notify.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	return store, store.Close, nil
}

// RunEpochOptions hold the parameters of a single epoch run.
type RunEpochOptions struct {
	Epoch      uint64
	Pulse      uint64
	Pool       string
	AgentsFile string
	ReportPath string
	EmitProofs bool
	DryRun     bool
}

// WatchOptions configure the sequential epoch loop.
type WatchOptions struct {
	StartEpoch uint64
	Pool       string
	EmitProofs bool
}

// BenchmarkOptions configure the cross-epoch analysis.
type BenchmarkOptions struct {
	ChartPath string
}

// ShowOptions configure the ledger listing.
type ShowOptions struct {
	Limit int
}

// VerifyOptions configure report verification.
type VerifyOptions struct {
	Epoch      uint64
	ReportPath string
}
