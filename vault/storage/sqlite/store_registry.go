package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/openclaim/vault/vault/asset"
	"github.com/openclaim/vault/vault/storage"
)

// Registry is the asset configuration view of the store.
type Registry struct {
	sqlDB *sql.DB
}

// AssetData returns a read-only snapshot of the asset's definition.
func (r *Registry) AssetData(ctx context.Context, assetID string) (asset.Definition, error) {
	if err := ctx.Err(); err != nil {
		return asset.Definition{}, err
	}
	row := r.sqlDB.QueryRowContext(ctx, `
SELECT id, status, issuer, deposit_fee_bps, withdraw_fee_bps, token_addr, vault_addr, distributor_addr
FROM assets WHERE id = ?
`, assetID)

	var (
		def    asset.Definition
		status int
	)
	err := row.Scan(
		&def.ID,
		&status,
		&def.Issuer,
		&def.DepositFeeBps,
		&def.WithdrawFeeBps,
		&def.Token,
		&def.Vault,
		&def.Distributor,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return asset.Definition{}, storage.ErrAssetNotFound
		}
		return asset.Definition{}, fmt.Errorf("read asset: %w", err)
	}
	def.Status = asset.Status(status)
	return def, nil
}

// DepositLimitReached reports whether total + amount would exceed the limit.
// Assets without a configured limit never report reached.
func (r *Registry) DepositLimitReached(ctx context.Context, assetID string, amount *uint256.Int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if amount == nil {
		return false, storage.ErrInvalidAmount
	}

	var (
		totalRaw string
		limitRaw sql.NullString
	)
	err := r.sqlDB.QueryRowContext(ctx, "SELECT deposit_total, deposit_limit FROM assets WHERE id = ?", assetID).
		Scan(&totalRaw, &limitRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, storage.ErrAssetNotFound
		}
		return false, fmt.Errorf("read deposit total: %w", err)
	}
	limit, err := decodeNullAmount(limitRaw)
	if err != nil {
		return false, err
	}
	if limit == nil {
		return false, nil
	}
	total, err := decodeAmount(totalRaw)
	if err != nil {
		return false, err
	}

	next := new(uint256.Int)
	if _, overflow := next.AddOverflow(total, amount); overflow {
		return true, nil
	}
	return next.Gt(limit), nil
}

// IncrementDeposits grows the asset's deposit total by amount.
func (r *Registry) IncrementDeposits(ctx context.Context, assetID string, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return storage.ErrInvalidAmount
	}

	tx, err := r.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin increment: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	total, err := depositTotalTx(tx, assetID)
	if err != nil {
		return err
	}
	if _, overflow := total.AddOverflow(total, amount); overflow {
		return storage.ErrInvalidAmount
	}
	if err := writeDepositTotalTx(tx, assetID, total); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit increment: %w", err)
	}
	return nil
}

// DecrementDeposits shrinks the asset's deposit total by amount.
func (r *Registry) DecrementDeposits(ctx context.Context, assetID string, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return storage.ErrInvalidAmount
	}

	tx, err := r.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decrement: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	total, err := depositTotalTx(tx, assetID)
	if err != nil {
		return err
	}
	if total.Lt(amount) {
		return storage.ErrDepositUnderflow
	}
	total.Sub(total, amount)
	if err := writeDepositTotalTx(tx, assetID, total); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decrement: %w", err)
	}
	return nil
}

// DepositTotal returns the running sum of recorded values of live receipts.
func (r *Registry) DepositTotal(ctx context.Context, assetID string) (*uint256.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var raw string
	err := r.sqlDB.QueryRowContext(ctx, "SELECT deposit_total FROM assets WHERE id = ?", assetID).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrAssetNotFound
		}
		return nil, fmt.Errorf("read deposit total: %w", err)
	}
	return decodeAmount(raw)
}

// PutAsset registers a new asset after validating its definition.
func (r *Registry) PutAsset(ctx context.Context, def asset.Definition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		return err
	}

	var exists int
	err := r.sqlDB.QueryRowContext(ctx, "SELECT 1 FROM assets WHERE id = ?", def.ID).Scan(&exists)
	if err == nil {
		return storage.ErrAssetAlreadyExists
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check asset: %w", err)
	}

	_, err = r.sqlDB.ExecContext(ctx, `
INSERT INTO assets (id, status, issuer, deposit_fee_bps, withdraw_fee_bps, token_addr, vault_addr, distributor_addr, deposit_total)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, '0')
`,
		def.ID,
		int(def.Status),
		def.Issuer,
		def.DepositFeeBps,
		def.WithdrawFeeBps,
		def.Token,
		def.Vault,
		def.Distributor,
	)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// SetAssetStatus enables or disables an existing asset.
func (r *Registry) SetAssetStatus(ctx context.Context, assetID string, status asset.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if status != asset.StatusEnabled && status != asset.StatusDisabled {
		return asset.ErrInvalidStatus
	}

	res, err := r.sqlDB.ExecContext(ctx, "UPDATE assets SET status = ? WHERE id = ?", int(status), assetID)
	if err != nil {
		return fmt.Errorf("update asset status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update asset status: %w", err)
	}
	if affected == 0 {
		return storage.ErrAssetNotFound
	}
	return nil
}

// SetDepositLimit caps the asset's deposit total. A nil limit removes the cap.
func (r *Registry) SetDepositLimit(ctx context.Context, assetID string, limit *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := r.sqlDB.ExecContext(ctx, "UPDATE assets SET deposit_limit = ? WHERE id = ?", encodeNullAmount(limit), assetID)
	if err != nil {
		return fmt.Errorf("update deposit limit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update deposit limit: %w", err)
	}
	if affected == 0 {
		return storage.ErrAssetNotFound
	}
	return nil
}

func depositTotalTx(tx *sql.Tx, assetID string) (*uint256.Int, error) {
	var raw string
	err := tx.QueryRow("SELECT deposit_total FROM assets WHERE id = ?", assetID).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrAssetNotFound
		}
		return nil, fmt.Errorf("read deposit total: %w", err)
	}
	return decodeAmount(raw)
}

func writeDepositTotalTx(tx *sql.Tx, assetID string, total *uint256.Int) error {
	if _, err := tx.Exec("UPDATE assets SET deposit_total = ? WHERE id = ?", encodeAmount(total), assetID); err != nil {
		return fmt.Errorf("write deposit total: %w", err)
	}
	return nil
}
