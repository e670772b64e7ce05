// Package storage mirrors the file artifacts into PostgreSQL when a DSN is
// configured. The files remain the source of truth; the database exists for
// querying history without parsing CSV/JSON.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AthenaOracle/athena-genesis/internal/report"
)

// ErrNotConfigured indicates the storage pool was not initialised.
var ErrNotConfigured = errors.New("storage: pool not configured")

const (
	insertLedgerRowSQL = `INSERT INTO ledger_rows (
        reward_date,
        epoch,
        pulse,
        agent_id,
        wallet,
        mis,
        reputation,
        amount,
        category,
        tx_hash
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
    );`

	insertAuditSQL = `INSERT INTO epoch_audit (
        run_id,
        epoch,
        pulse,
        pool,
        merit_pool,
        bounty_pool,
        dev_pool,
        treasury_pool,
        split_merit_pct,
        split_bounty_pct,
        split_dev_pct,
        split_treasury_pct,
        recorded_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
    )
    ON CONFLICT (run_id) DO NOTHING;`

	listRecentLedgerRowsSQL = `SELECT
        reward_date,
        epoch,
        pulse,
        agent_id,
        wallet,
        mis,
        reputation,
        amount,
        category,
        tx_hash
    FROM ledger_rows
    ORDER BY epoch DESC, category
    LIMIT $1;`
)

// Store provides database persistence backed by pgx.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an initialised pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertLedgerRows mirrors one epoch's ledger rows in a single transaction.
func (s *Store) InsertLedgerRows(ctx context.Context, rows []report.LedgerRow) error {
	if s.pool == nil {
		return ErrNotConfigured
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, row := range rows {
			_, err := tx.Exec(ctx, insertLedgerRowSQL,
				row.Date,
				int64(row.Epoch),
				int64(row.Pulse),
				row.AgentID,
				row.Wallet,
				row.MIS,
				row.Reputation,
				row.Amount,
				row.Category,
				row.TxHash,
			)
			if err != nil {
				return fmt.Errorf("insert ledger row: %w", err)
			}
		}
		return nil
	})
}

// InsertAudit mirrors one audit record.
func (s *Store) InsertAudit(ctx context.Context, record report.AuditRecord) error {
	if s.pool == nil {
		return ErrNotConfigured
	}

	_, err := s.pool.Exec(ctx, insertAuditSQL,
		record.RunID,
		int64(record.Epoch),
		int64(record.Pulse),
		record.Pool,
		record.MeritPool,
		record.BountyPool,
		record.DevPool,
		record.TreasuryPool,
		record.Split.MeritPct,
		record.Split.BountyPct,
		record.Split.DevPct,
		record.Split.TreasuryPct,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListRecentLedgerRows returns the most recent mirrored rows.
func (s *Store) ListRecentLedgerRows(ctx context.Context, limit int) ([]report.LedgerRow, error) {
	if s.pool == nil {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, listRecentLedgerRowsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger rows: %w", err)
	}
	defer rows.Close()

	var out []report.LedgerRow
	for rows.Next() {
		var row report.LedgerRow
		var epochID, pulseID int64
		if err := rows.Scan(
			&row.Date,
			&epochID,
			&pulseID,
			&row.AgentID,
			&row.Wallet,
			&row.MIS,
			&row.Reputation,
			&row.Amount,
			&row.Category,
			&row.TxHash,
		); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		row.Epoch = uint64(epochID)
		row.Pulse = uint64(pulseID)
		out = append(out, row)
	}
	return out, rows.Err()
}
