// Package asset describes per-asset vault configuration.
//
// A Definition is a read-only, per-call snapshot owned by the registry. The
// engine never mutates one; it only evaluates the predicates below before
// touching any ledger.
package asset

import (
	apperrors "github.com/openclaim/vault/internal/platform/errors"
)

// Status describes whether an asset accepts vault operations.
type Status int

const (
	// StatusUnspecified represents an invalid status value.
	StatusUnspecified Status = iota
	// StatusEnabled indicates the asset accepts puts and exits.
	StatusEnabled
	// StatusDisabled indicates the asset rejects all vault operations.
	StatusDisabled
)

// FeeDenominator is the fixed basis-point denominator for fee math.
const FeeDenominator = 10000

var (
	// ErrEmptyID indicates a missing asset ID.
	ErrEmptyID = apperrors.New(apperrors.CodeAssetEmptyID, "asset id is required")
	// ErrEmptyIssuer indicates a missing issuer address.
	ErrEmptyIssuer = apperrors.New(apperrors.CodeAssetEmptyIssuer, "asset issuer is required")
	// ErrInvalidStatus indicates a missing or invalid asset status.
	ErrInvalidStatus = apperrors.New(apperrors.CodeAssetInvalidStatus, "asset status is required")
	// ErrInvalidFeeConfiguration indicates fee basis points above the denominator.
	ErrInvalidFeeConfiguration = apperrors.New(apperrors.CodeInvalidFeeConfiguration, "fee basis points exceed denominator")
)

// Definition is the per-asset configuration snapshot the engine reads.
type Definition struct {
	// ID is the stable, nonzero asset identifier.
	ID string
	// Status gates all vault operations for the asset.
	Status Status
	// Issuer is the only address authorized to call put/exit for this asset.
	Issuer string
	// DepositFeeBps sizes the fee withheld from a deposit, in basis points.
	DepositFeeBps uint32
	// WithdrawFeeBps sizes the fee withheld from a withdrawal, in basis points.
	WithdrawFeeBps uint32
	// Token, Vault, and Distributor identify peripheral addresses. They are
	// informational to the accounting engine.
	Token       string
	Vault       string
	Distributor string
}

// Validate rejects malformed definitions at configuration time.
// Fee bounds are enforced here, not at use time, so SplitFee can assume a
// valid rate for any registered asset.
func (d Definition) Validate() error {
	if d.ID == "" {
		return ErrEmptyID
	}
	if d.Issuer == "" {
		return ErrEmptyIssuer
	}
	if d.Status != StatusEnabled && d.Status != StatusDisabled {
		return ErrInvalidStatus
	}
	if d.DepositFeeBps > FeeDenominator || d.WithdrawFeeBps > FeeDenominator {
		return ErrInvalidFeeConfiguration
	}
	return nil
}

// IsActive reports whether the asset accepts vault operations.
func (d Definition) IsActive() bool {
	return d.Status == StatusEnabled
}

// IsIssuer reports whether addr holds the issuer role for this asset.
func (d Definition) IsIssuer(addr string) bool {
	return addr != "" && addr == d.Issuer
}

// IsToken reports whether addr is the asset's claim-token address.
func (d Definition) IsToken(addr string) bool {
	return addr != "" && addr == d.Token
}

// IsVault reports whether addr is the asset's vault address.
func (d Definition) IsVault(addr string) bool {
	return addr != "" && addr == d.Vault
}

// IsDistributor reports whether addr is the asset's distributor address.
func (d Definition) IsDistributor(addr string) bool {
	return addr != "" && addr == d.Distributor
}
