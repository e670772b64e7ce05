package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AthenaOracle/athena-genesis/internal/epoch"
)

// Reward categories recorded in the ledger.
const (
	CategoryMerit    = "merit"
	CategoryBounty   = "bounty"
	CategoryDev      = "dev"
	CategoryTreasury = "treasury"
)

var ledgerHeader = []string{"date", "epoch", "pulse", "agent_id", "wallet", "mis", "reputation", "amount", "category", "tx_hash"}

// LedgerRow is one append-only reward entry. TxHash stays empty until the
// claim is settled on-chain.
type LedgerRow struct {
	Date       string
	Epoch      uint64
	Pulse      uint64
	AgentID    string
	Wallet     string
	MIS        float64
	Reputation float64
	Amount     decimal.Decimal
	Category   string
	TxHash     string
}

// LedgerRows expands an epoch result into its ledger entries: one merit row
// per wallet, a bounty row for each non-zero bounty, and synthetic dev and
// treasury rows for the organizational shares.
func LedgerRows(result *epoch.Result, date time.Time) []LedgerRow {
	day := date.UTC().Format("2006-01-02")
	rows := make([]LedgerRow, 0, len(result.Outcomes)+2)
	for _, o := range result.Outcomes {
		rows = append(rows, LedgerRow{
			Date:       day,
			Epoch:      result.Params.Epoch,
			Pulse:      result.Params.Pulse,
			AgentID:    o.Submission.AgentID,
			Wallet:     o.Submission.Wallet.Hex(),
			MIS:        round6(o.Score.MIS),
			Reputation: o.Reputation,
			Amount:     o.Merit.Round(8),
			Category:   CategoryMerit,
		})
		if o.Bounty.Sign() > 0 {
			rows = append(rows, LedgerRow{
				Date:       day,
				Epoch:      result.Params.Epoch,
				Pulse:      result.Params.Pulse,
				AgentID:    o.Submission.AgentID,
				Wallet:     o.Submission.Wallet.Hex(),
				MIS:        round6(o.Score.MIS),
				Reputation: o.Reputation,
				Amount:     o.Bounty.Round(8),
				Category:   CategoryBounty,
			})
		}
	}

	rows = append(rows,
		LedgerRow{Date: day, Epoch: result.Params.Epoch, Pulse: result.Params.Pulse, Amount: result.Pools.Dev.Round(8), Category: CategoryDev},
		LedgerRow{Date: day, Epoch: result.Params.Epoch, Pulse: result.Params.Pulse, Amount: result.Pools.Treasury.Round(8), Category: CategoryTreasury},
	)
	return rows
}

// AppendLedger appends rows to the CSV ledger, writing the header when the
// file is first created.
func AppendLedger(path string, rows []LedgerRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}

	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if isNew {
		if err := writer.Write(ledgerHeader); err != nil {
			return fmt.Errorf("write ledger header: %w", err)
		}
	}
	for _, row := range rows {
		record := []string{
			row.Date,
			strconv.FormatUint(row.Epoch, 10),
			strconv.FormatUint(row.Pulse, 10),
			row.AgentID,
			row.Wallet,
			strconv.FormatFloat(row.MIS, 'f', 6, 64),
			strconv.FormatFloat(row.Reputation, 'f', 6, 64),
			row.Amount.String(),
			row.Category,
			row.TxHash,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write ledger row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadLedger loads every row from the CSV ledger. A missing file yields an
// empty slice.
func ReadLedger(path string) ([]LedgerRow, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	rows := make([]LedgerRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(ledgerHeader) {
			return nil, fmt.Errorf("ledger row has %d fields, want %d", len(record), len(ledgerHeader))
		}
		epochID, err := strconv.ParseUint(record[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse ledger epoch: %w", err)
		}
		pulseID, err := strconv.ParseUint(record[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse ledger pulse: %w", err)
		}
		mis, _ := strconv.ParseFloat(record[5], 64)
		reputation, _ := strconv.ParseFloat(record[6], 64)
		amount, err := decimal.NewFromString(record[7])
		if err != nil {
			return nil, fmt.Errorf("parse ledger amount: %w", err)
		}
		rows = append(rows, LedgerRow{
			Date:       record[0],
			Epoch:      epochID,
			Pulse:      pulseID,
			AgentID:    record[3],
			Wallet:     record[4],
			MIS:        mis,
			Reputation: reputation,
			Amount:     amount,
			Category:   record[8],
			TxHash:     record[9],
		})
	}
	return rows, nil
}
