// Package receipt defines the non-fungible deposit record.
//
// A receipt binds an owner to an immutable recorded collateral value. The
// recorded value is fixed at mint time and is the only number redemption may
// burn; it changes solely through an explicit partial redemption, which
// reduces it by exactly the redeemed amount.
package receipt

import (
	"time"

	"github.com/holiman/uint256"
)

// Metadata is the caller-supplied mint payload for a new receipt.
type Metadata struct {
	// AssetID identifies the asset the deposit is made against.
	AssetID string
	// Value is the gross collateral value to bind to the receipt.
	Value *uint256.Int
	// NetValue and FeeAmount record the fee split at deposit time. They are
	// display data; accounting always uses Value.
	NetValue  *uint256.Int
	FeeAmount *uint256.Int
	// URI points at off-ledger display metadata.
	URI string
}

// Receipt is one live deposit record owned by the receipt ledger.
type Receipt struct {
	// ID is opaque, unique, and never reused after the receipt is destroyed.
	ID string
	// AssetID identifies the asset this receipt backs.
	AssetID string
	// Owner is the current holder.
	Owner string
	// RecordedValue is the collateral value bound at mint time.
	RecordedValue *uint256.Int
	// NetValue and FeeAmount mirror the fee split captured at mint time.
	NetValue  *uint256.Int
	FeeAmount *uint256.Int
	// URI points at off-ledger display metadata.
	URI string
	// MintedAt is the deposit timestamp.
	MintedAt time.Time
}

// Clone returns a deep copy so ledger internals never leak mutable amounts.
func (r Receipt) Clone() Receipt {
	out := r
	out.RecordedValue = cloneAmount(r.RecordedValue)
	out.NetValue = cloneAmount(r.NetValue)
	out.FeeAmount = cloneAmount(r.FeeAmount)
	return out
}

func cloneAmount(v *uint256.Int) *uint256.Int {
	if v == nil {
		return nil
	}
	return new(uint256.Int).Set(v)
}
