package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/openclaim/vault/vault/receipt"
	"github.com/openclaim/vault/vault/storage"
)

// ReceiptLedger is the deposit receipt view of the store.
type ReceiptLedger struct {
	sqlDB *sql.DB
	idgen func() (string, error)
	clock func() time.Time
}

// Mint creates a receipt for to, binding the recorded value from meta.
func (l *ReceiptLedger) Mint(ctx context.Context, to string, meta receipt.Metadata) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if to == "" || meta.AssetID == "" {
		return "", storage.ErrInvalidAmount
	}
	if meta.Value == nil || meta.Value.IsZero() {
		return "", storage.ErrInvalidAmount
	}

	receiptID, err := l.idgen()
	if err != nil {
		return "", fmt.Errorf("generate receipt id: %w", err)
	}

	_, err = l.sqlDB.ExecContext(ctx, `
INSERT INTO receipts (id, asset_id, owner, recorded_value, net_value, fee_amount, uri, minted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		receiptID,
		meta.AssetID,
		to,
		encodeAmount(meta.Value),
		encodeNullAmount(meta.NetValue),
		encodeNullAmount(meta.FeeAmount),
		meta.URI,
		toMillis(l.clock()),
	)
	if err != nil {
		return "", fmt.Errorf("insert receipt: %w", err)
	}
	return receiptID, nil
}

// Burn destroys the receipt held by from. The ID is never reused.
func (l *ReceiptLedger) Burn(ctx context.Context, from string, receiptID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := l.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin burn: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var owner string
	err = tx.QueryRow("SELECT owner FROM receipts WHERE id = ?", receiptID).Scan(&owner)
	if err != nil {
		if err == sql.ErrNoRows {
			return storage.ErrReceiptNotFound
		}
		return fmt.Errorf("read receipt owner: %w", err)
	}
	if owner != from {
		return storage.ErrReceiptNotOwned
	}

	if _, err := tx.Exec("DELETE FROM receipts WHERE id = ?", receiptID); err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit burn: %w", err)
	}
	return nil
}

// ReduceValue lowers the receipt's recorded value by amount.
// The reduction must leave a positive recorded value behind; destroying a
// receipt goes through Burn.
func (l *ReceiptLedger) ReduceValue(ctx context.Context, receiptID string, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return storage.ErrInvalidReduction
	}

	tx, err := l.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reduce: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRow("SELECT recorded_value FROM receipts WHERE id = ?", receiptID).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return storage.ErrReceiptNotFound
		}
		return fmt.Errorf("read recorded value: %w", err)
	}
	recorded, err := decodeAmount(raw)
	if err != nil {
		return err
	}
	if !amount.Lt(recorded) {
		return storage.ErrInvalidReduction
	}
	recorded.Sub(recorded, amount)

	if _, err := tx.Exec("UPDATE receipts SET recorded_value = ? WHERE id = ?", encodeAmount(recorded), receiptID); err != nil {
		return fmt.Errorf("update recorded value: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reduce: %w", err)
	}
	return nil
}

// OwnerOf returns the receipt's current holder.
func (l *ReceiptLedger) OwnerOf(ctx context.Context, receiptID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var owner string
	err := l.sqlDB.QueryRowContext(ctx, "SELECT owner FROM receipts WHERE id = ?", receiptID).Scan(&owner)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", storage.ErrReceiptNotFound
		}
		return "", fmt.Errorf("read receipt owner: %w", err)
	}
	return owner, nil
}

// DataOf returns a copy of the receipt record.
func (l *ReceiptLedger) DataOf(ctx context.Context, receiptID string) (receipt.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return receipt.Receipt{}, err
	}
	row := l.sqlDB.QueryRowContext(ctx, `
SELECT id, asset_id, owner, recorded_value, net_value, fee_amount, uri, minted_at
FROM receipts WHERE id = ?
`, receiptID)
	rec, err := scanReceiptRow(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return receipt.Receipt{}, storage.ErrReceiptNotFound
		}
		return receipt.Receipt{}, err
	}
	return rec, nil
}

// ListByAsset returns all live receipts for the asset, oldest first.
func (l *ReceiptLedger) ListByAsset(ctx context.Context, assetID string) ([]receipt.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := l.sqlDB.QueryContext(ctx, `
SELECT id, asset_id, owner, recorded_value, net_value, fee_amount, uri, minted_at
FROM receipts WHERE asset_id = ?
ORDER BY minted_at, id
`, assetID)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var out []receipt.Receipt
	for rows.Next() {
		rec, err := scanReceiptRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan receipt row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipt rows: %w", err)
	}
	return out, nil
}

func scanReceiptRow(scan func(dest ...any) error) (receipt.Receipt, error) {
	var (
		rec         receipt.Receipt
		recordedRaw string
		netRaw      sql.NullString
		feeRaw      sql.NullString
		mintedAtRaw int64
	)
	if err := scan(
		&rec.ID,
		&rec.AssetID,
		&rec.Owner,
		&recordedRaw,
		&netRaw,
		&feeRaw,
		&rec.URI,
		&mintedAtRaw,
	); err != nil {
		return receipt.Receipt{}, err
	}

	recorded, err := decodeAmount(recordedRaw)
	if err != nil {
		return receipt.Receipt{}, err
	}
	rec.RecordedValue = recorded

	if rec.NetValue, err = decodeNullAmount(netRaw); err != nil {
		return receipt.Receipt{}, err
	}
	if rec.FeeAmount, err = decodeNullAmount(feeRaw); err != nil {
		return receipt.Receipt{}, err
	}
	rec.MintedAt = fromMillis(mintedAtRaw)
	return rec, nil
}
