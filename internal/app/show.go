package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/AthenaOracle/athena-genesis/internal/report"
)

// Show prints recent ledger rows, preferring the database mirror when
// configured and falling back to the CSV ledger.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	rows, err := a.recentRows(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "no ledger rows found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tEpoch\tWallet\tCategory\tMIS\tReputation\tAmount")
	for _, row := range rows {
		fmt.Fprintf(
			writer,
			"%s\t%d\t%s\t%s\t%.4f\t%.4f\t%s\n",
			row.Date,
			row.Epoch,
			row.Wallet,
			row.Category,
			row.MIS,
			row.Reputation,
			row.Amount.String(),
		)
	}
	return writer.Flush()
}

func (a *App) recentRows(ctx context.Context, limit int) ([]report.LedgerRow, error) {
	if limit <= 0 {
		limit = 50
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if store != nil {
		defer closeStore()
		return store.ListRecentLedgerRows(ctx, limit)
	}

	rows, err := report.ReadLedger(a.Config.Paths.LedgerFile)
	if err != nil {
		return nil, err
	}
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows, nil
}
