package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/openclaim/vault/vault/storage"
)

// FungibleLedger is the claim-token balance view of the store.
type FungibleLedger struct {
	sqlDB *sql.DB
}

// Mint credits amount to the holder and grows total supply.
func (l *FungibleLedger) Mint(ctx context.Context, to string, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == "" {
		return storage.ErrInvalidAmount
	}
	if amount == nil || amount.IsZero() {
		return storage.ErrInvalidAmount
	}

	tx, err := l.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mint: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	balance, err := balanceTx(tx, to)
	if err != nil {
		return err
	}
	if _, overflow := balance.AddOverflow(balance, amount); overflow {
		return storage.ErrInvalidAmount
	}

	supply, err := supplyTx(tx)
	if err != nil {
		return err
	}
	if _, overflow := supply.AddOverflow(supply, amount); overflow {
		return storage.ErrInvalidAmount
	}

	if err := writeBalanceTx(tx, to, balance); err != nil {
		return err
	}
	if err := writeSupplyTx(tx, supply); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mint: %w", err)
	}
	return nil
}

// Burn debits amount from the holder and shrinks total supply.
func (l *FungibleLedger) Burn(ctx context.Context, from string, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if from == "" {
		return storage.ErrInvalidAmount
	}
	if amount == nil || amount.IsZero() {
		return storage.ErrInvalidAmount
	}

	tx, err := l.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin burn: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	balance, err := balanceTx(tx, from)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return storage.ErrInsufficientBalance
	}
	balance.Sub(balance, amount)

	supply, err := supplyTx(tx)
	if err != nil {
		return err
	}
	if supply.Lt(amount) {
		return storage.ErrInsufficientBalance
	}
	supply.Sub(supply, amount)

	if err := writeBalanceTx(tx, from, balance); err != nil {
		return err
	}
	if err := writeSupplyTx(tx, supply); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit burn: %w", err)
	}
	return nil
}

// TotalSupply returns the total minted claim-token supply.
func (l *FungibleLedger) TotalSupply(ctx context.Context) (*uint256.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var raw string
	err := l.sqlDB.QueryRowContext(ctx, "SELECT supply FROM fungible_supply WHERE id = 1").Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return new(uint256.Int), nil
		}
		return nil, fmt.Errorf("read supply: %w", err)
	}
	return decodeAmount(raw)
}

// BalanceOf returns the holder's claim-token balance.
func (l *FungibleLedger) BalanceOf(ctx context.Context, addr string) (*uint256.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var raw string
	err := l.sqlDB.QueryRowContext(ctx, "SELECT balance FROM fungible_balances WHERE holder = ?", addr).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return new(uint256.Int), nil
		}
		return nil, fmt.Errorf("read balance: %w", err)
	}
	return decodeAmount(raw)
}

func balanceTx(tx *sql.Tx, holder string) (*uint256.Int, error) {
	var raw string
	err := tx.QueryRow("SELECT balance FROM fungible_balances WHERE holder = ?", holder).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return new(uint256.Int), nil
		}
		return nil, fmt.Errorf("read balance: %w", err)
	}
	return decodeAmount(raw)
}

func supplyTx(tx *sql.Tx) (*uint256.Int, error) {
	var raw string
	err := tx.QueryRow("SELECT supply FROM fungible_supply WHERE id = 1").Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return new(uint256.Int), nil
		}
		return nil, fmt.Errorf("read supply: %w", err)
	}
	return decodeAmount(raw)
}

func writeBalanceTx(tx *sql.Tx, holder string, balance *uint256.Int) error {
	_, err := tx.Exec(`
INSERT INTO fungible_balances (holder, balance) VALUES (?, ?)
ON CONFLICT (holder) DO UPDATE SET balance = excluded.balance
`, holder, encodeAmount(balance))
	if err != nil {
		return fmt.Errorf("write balance: %w", err)
	}
	return nil
}

func writeSupplyTx(tx *sql.Tx, supply *uint256.Int) error {
	_, err := tx.Exec(`
INSERT INTO fungible_supply (id, supply) VALUES (1, ?)
ON CONFLICT (id) DO UPDATE SET supply = excluded.supply
`, encodeAmount(supply))
	if err != nil {
		return fmt.Errorf("write supply: %w", err)
	}
	return nil
}
