// Package storage defines the capability interfaces the vault engine consumes.
//
// The engine treats the fungible ledger, the receipt ledger, and the asset
// registry as independent collaborators. Each implementation must make its
// individual operations atomic; cross-collaborator atomicity is the engine's
// job (compensating rollback, see package vault).
package storage

import (
	"context"

	"github.com/holiman/uint256"

	apperrors "github.com/openclaim/vault/internal/platform/errors"
	"github.com/openclaim/vault/vault/asset"
	"github.com/openclaim/vault/vault/event"
	"github.com/openclaim/vault/vault/receipt"
)

var (
	// ErrNotFound indicates a requested persistence record is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")
	// ErrAssetNotFound indicates the registry holds no definition for the asset.
	ErrAssetNotFound = apperrors.New(apperrors.CodeAssetNotFound, "asset not found")
	// ErrAssetAlreadyExists indicates a duplicate asset registration.
	ErrAssetAlreadyExists = apperrors.New(apperrors.CodeAssetAlreadyExists, "asset already exists")
	// ErrReceiptNotFound indicates the receipt does not exist or was destroyed.
	// A retried exit against a destroyed receipt must fail with this error
	// deterministically, never silently no-op.
	ErrReceiptNotFound = apperrors.New(apperrors.CodeReceiptNotFound, "receipt not found")
	// ErrReceiptNotOwned indicates the receipt exists but belongs to another holder.
	ErrReceiptNotOwned = apperrors.New(apperrors.CodeReceiptNotOwned, "receipt not owned by holder")
	// ErrInvalidReduction indicates a partial-redemption amount that is zero or
	// not strictly below the receipt's recorded value.
	ErrInvalidReduction = apperrors.New(apperrors.CodeInvalidPartialAmount, "reduction must be positive and below recorded value")
	// ErrDepositUnderflow indicates a decrement larger than the deposit total,
	// which can only happen when the conservation invariant is already broken.
	ErrDepositUnderflow = apperrors.New(apperrors.CodeConservationViolation, "deposit total underflow")
	// ErrInsufficientBalance indicates a burn larger than the holder's balance.
	ErrInsufficientBalance = apperrors.New(apperrors.CodeInsufficientFungibleBalance, "insufficient fungible balance")
	// ErrInvalidAmount indicates a nil or otherwise unusable amount argument.
	ErrInvalidAmount = apperrors.New(apperrors.CodeInvalidValue, "amount is required")
)

// FungibleLedger tracks claim-token balances and total supply.
//
// Mint and Burn are capability-gated: embedders hand the full ledger only to
// the engine and expose read-only views elsewhere.
type FungibleLedger interface {
	Mint(ctx context.Context, to string, amount *uint256.Int) error
	Burn(ctx context.Context, from string, amount *uint256.Int) error
	TotalSupply(ctx context.Context) (*uint256.Int, error)
	BalanceOf(ctx context.Context, addr string) (*uint256.Int, error)
}

// ReceiptLedger owns receipt existence, identity, and current holders.
type ReceiptLedger interface {
	// Mint creates a receipt for to with the recorded value bound from meta.
	Mint(ctx context.Context, to string, meta receipt.Metadata) (string, error)
	// Burn destroys the receipt. It fails with ErrReceiptNotFound when the
	// receipt does not exist and ErrNotFound-style mismatch when from is not
	// the current owner.
	Burn(ctx context.Context, from string, receiptID string) error
	// ReduceValue lowers the receipt's recorded value by amount, keeping the
	// receipt alive. Used only by partial redemption.
	ReduceValue(ctx context.Context, receiptID string, amount *uint256.Int) error
	OwnerOf(ctx context.Context, receiptID string) (string, error)
	DataOf(ctx context.Context, receiptID string) (receipt.Receipt, error)
	// ListByAsset returns all live receipts for the asset.
	ListByAsset(ctx context.Context, assetID string) ([]receipt.Receipt, error)
}

// AssetRegistry owns asset configuration and per-asset deposit totals.
type AssetRegistry interface {
	// AssetData returns a read-only snapshot of the asset's definition.
	AssetData(ctx context.Context, assetID string) (asset.Definition, error)
	// DepositLimitReached reports whether adding amount to the asset's deposit
	// total would exceed its configured limit.
	DepositLimitReached(ctx context.Context, assetID string, amount *uint256.Int) (bool, error)
	IncrementDeposits(ctx context.Context, assetID string, amount *uint256.Int) error
	DecrementDeposits(ctx context.Context, assetID string, amount *uint256.Int) error
	// DepositTotal returns the running sum of recorded values of live receipts.
	DepositTotal(ctx context.Context, assetID string) (*uint256.Int, error)
}

// RegistryAdmin is the configuration-time surface of the registry. The engine
// never calls it.
type RegistryAdmin interface {
	// PutAsset registers a new asset. Definitions are validated here so the
	// engine can assume well-formed snapshots.
	PutAsset(ctx context.Context, def asset.Definition) error
	SetAssetStatus(ctx context.Context, assetID string, status asset.Status) error
	// SetDepositLimit caps the asset's deposit total. A nil limit removes the cap.
	SetDepositLimit(ctx context.Context, assetID string, limit *uint256.Int) error
}

// AuditEventStore appends and lists vault audit events.
type AuditEventStore interface {
	event.Sink
	// ListAuditEvents returns up to limit events for the asset in append
	// order. A non-positive limit returns all events.
	ListAuditEvents(ctx context.Context, assetID string, limit int) ([]event.Event, error)
}
