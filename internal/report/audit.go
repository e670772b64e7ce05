package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AthenaOracle/athena-genesis/internal/epoch"
)

// AuditRecord pins every epoch's exact pool partition and the split
// configuration it was produced under, for later reconciliation against the
// ledger and on-chain claims.
type AuditRecord struct {
	RunID        string          `json:"runId"`
	Epoch        uint64          `json:"epoch"`
	Pulse        uint64          `json:"pulse,omitempty"`
	Pool         decimal.Decimal `json:"pool"`
	MeritPool    decimal.Decimal `json:"meritPool"`
	BountyPool   decimal.Decimal `json:"bountyPool"`
	DevPool      decimal.Decimal `json:"devPool"`
	TreasuryPool decimal.Decimal `json:"treasuryPool"`
	Split        epoch.Split     `json:"split"`
	Timestamp    string          `json:"timestamp"`
}

// NewAuditRecord derives the audit entry for a run.
func NewAuditRecord(result *epoch.Result, at time.Time) AuditRecord {
	return AuditRecord{
		RunID:        uuid.NewString(),
		Epoch:        result.Params.Epoch,
		Pulse:        result.Params.Pulse,
		Pool:         result.Params.Pool,
		MeritPool:    result.Pools.Merit,
		BountyPool:   result.Pools.Bounty,
		DevPool:      result.Pools.Dev,
		TreasuryPool: result.Pools.Treasury,
		Split:        result.Split,
		Timestamp:    at.UTC().Format(time.RFC3339),
	}
}

// AppendAudit writes one JSON line to the append-only audit trail.
func AppendAudit(path string, record AuditRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create audit dir: %w", err)
		}
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit trail: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}
