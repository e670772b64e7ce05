package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AthenaOracle/athena-genesis/internal/epoch"
	"github.com/AthenaOracle/athena-genesis/internal/notify"
	"github.com/AthenaOracle/athena-genesis/internal/oracle"
	"github.com/AthenaOracle/athena-genesis/internal/report"
	"github.com/AthenaOracle/athena-genesis/internal/state"
)

// RunEpoch executes one full epoch: validate input, establish oracle truth,
// run the engine, and — unless dry-run — publish every artifact and persist
// the updated state. All fatal errors surface before anything is written.
func (a *App) RunEpoch(ctx context.Context, opts RunEpochOptions) error {
	pool, err := decimal.NewFromString(opts.Pool)
	if err != nil {
		return fmt.Errorf("parse pool amount %q: %w", opts.Pool, err)
	}

	agentsFile := opts.AgentsFile
	if agentsFile == "" {
		agentsFile = a.Config.Paths.AgentsFile
	}
	subs, err := epoch.LoadSubmissions(agentsFile)
	if err != nil {
		return err
	}

	// The split and oracle target files are re-read every epoch so DAO and
	// source changes apply without a restart.
	split, err := epoch.LoadSplit(a.Config.Paths.DAOSplitFile)
	if err != nil {
		return err
	}
	oracleCfg, err := oracle.LoadConfig(a.Config.Oracle.ConfigPath)
	if err != nil {
		return err
	}
	target, err := oracleCfg.FindTarget(a.Config.Oracle.TargetSymbol)
	if err != nil {
		return err
	}

	reputation, err := state.LoadReputation(a.Config.Paths.ReputationFile)
	if err != nil {
		return err
	}
	streaks, err := state.LoadStreaks(a.Config.Paths.StreaksFile)
	if err != nil {
		return err
	}

	truth, err := a.Aggregator.Consensus(ctx, target, oracleCfg.Fallback)
	if err != nil {
		return fmt.Errorf("epoch %d aborted: %w", opts.Epoch, err)
	}

	engine := epoch.NewEngine(a.Logger)
	result, err := engine.Run(epoch.Params{
		Epoch:         opts.Epoch,
		Pulse:         opts.Pulse,
		Pool:          pool,
		TokenDecimals: a.Config.Engine.TokenDecimals,
		Alpha:         a.Config.Engine.TruthPowerAlpha,
		EmitProofs:    opts.EmitProofs || a.Config.Engine.EmitProofs,
		DryRun:        opts.DryRun,
	}, subs, truth, split, reputation, streaks)
	if err != nil {
		return err
	}

	now := time.Now()
	doc := report.Assemble(result, a.Config.App.TokenSymbol, streaks.Snapshot(), now)

	if opts.DryRun {
		a.Logger.Info().Uint64("epoch", opts.Epoch).Str("root", doc.MerkleRoot).Msg("dry run complete, nothing written")
		printSummary(doc, "", true)
		return nil
	}

	reportPath := opts.ReportPath
	if reportPath == "" {
		reportPath = report.Path(a.Config.Paths.ReportDir, opts.Epoch)
	}
	if err := report.Write(reportPath, doc); err != nil {
		return err
	}

	rows := report.LedgerRows(result, now)
	if err := report.AppendLedger(a.Config.Paths.LedgerFile, rows); err != nil {
		return err
	}

	audit := report.NewAuditRecord(result, now)
	if err := report.AppendAudit(a.Config.Paths.AuditFile, audit); err != nil {
		return err
	}

	if err := reputation.Save(); err != nil {
		return err
	}
	if err := streaks.Save(); err != nil {
		return err
	}

	a.mirrorToDatabase(ctx, rows, audit)
	a.notifyCompletion(ctx, doc)

	printSummary(doc, reportPath, false)
	return nil
}

// mirrorToDatabase copies the rows into PostgreSQL when configured. The
// files are the source of truth, so mirror failures are logged, not fatal.
func (a *App) mirrorToDatabase(ctx context.Context, rows []report.LedgerRow, audit report.AuditRecord) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to open database mirror")
		return
	}
	if store == nil {
		return
	}
	defer closeStore()

	if err := store.InsertLedgerRows(ctx, rows); err != nil {
		a.Logger.Error().Err(err).Msg("failed to mirror ledger rows")
	}
	if err := store.InsertAudit(ctx, audit); err != nil {
		a.Logger.Error().Err(err).Msg("failed to mirror audit record")
	}
}

func (a *App) notifyCompletion(ctx context.Context, doc *report.Document) {
	notifier := a.newNotifier()
	if notifier == nil {
		return
	}

	summary := notifySummary(doc)
	if err := notifier.Notify(ctx, summary); err != nil {
		a.Logger.Error().Err(err).Uint64("epoch", doc.Epoch).Msg("failed to deliver epoch summary")
	}
}

func notifySummary(doc *report.Document) notify.Summary {
	return notify.Summary{
		Epoch:       doc.Epoch,
		Pulse:       doc.Pulse,
		Pool:        doc.Pool,
		Token:       doc.Token,
		OracleTruth: doc.OracleTruth,
		MerkleRoot:  doc.MerkleRoot,
		AgentCount:  doc.AgentCount,
	}
}

func printSummary(doc *report.Document, reportPath string, dryRun bool) {
	fmt.Fprintf(os.Stdout, "Epoch %d complete.\n", doc.Epoch)
	fmt.Fprintf(os.Stdout, "Merkle root: %s\n", doc.MerkleRoot)
	fmt.Fprintf(os.Stdout, "Oracle truth: %.2f\n", doc.OracleTruth)
	fmt.Fprintf(os.Stdout, "Agents: %d, truth rate: %.4f%%\n", doc.AgentCount, doc.TruthRate)
	if dryRun {
		fmt.Fprintln(os.Stdout, "[dry-run] no files written")
		return
	}
	fmt.Fprintf(os.Stdout, "Report -> %s\n", reportPath)
}
