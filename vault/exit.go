package vault

import (
	"context"

	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/openclaim/vault/vault/event"
	"github.com/openclaim/vault/vault/receipt"
	"github.com/openclaim/vault/vault/storage"
)

// ExitRequest describes a full redemption: destroy a receipt and burn the
// claim tokens backing it.
type ExitRequest struct {
	// AssetID identifies the asset being redeemed.
	AssetID string
	// Actor is the address performing the operation; must hold the issuer role.
	Actor string
	// From is the holder whose receipt and claim tokens are consumed.
	From string
	// ReceiptID identifies the receipt to destroy.
	ReceiptID string
}

// ExitResult reports the outcome of a successful redemption.
type ExitResult struct {
	// Burned is the claim-token amount destroyed, always equal to the
	// receipt's recorded value at the time of redemption.
	Burned *uint256.Int
}

// Exit redeems a receipt in full.
//
// The burn amount is read from the receipt's recorded value; callers cannot
// choose it. Destroying a receipt therefore always burns exactly the claim
// tokens it backs, and a holder whose balance does not cover the recorded
// value cannot redeem.
//
// Mutation order is fungible burn, deposit total, receipt burn; the receipt
// runs last because its ID is never reusable once destroyed. Earlier steps
// are compensated in reverse when a later one fails. A second exit against
// the same receipt fails with the receipt-not-found error and changes
// nothing.
func (v *Vault) Exit(ctx context.Context, req ExitRequest) (ExitResult, error) {
	ctx, span := v.tracer.Start(ctx, "vault.exit", trace.WithAttributes(
		attribute.String("asset.id", req.AssetID),
		attribute.String("receipt.id", req.ReceiptID),
	))
	defer span.End()

	if req.From == "" {
		return ExitResult{}, ErrEmptyHolder
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.authorize(ctx, req.AssetID, req.Actor); err != nil {
		return ExitResult{}, err
	}

	rec, err := v.resolveReceipt(ctx, req.AssetID, req.From, req.ReceiptID)
	if err != nil {
		return ExitResult{}, err
	}

	value := new(uint256.Int).Set(rec.RecordedValue)

	balance, err := v.fungible.BalanceOf(ctx, req.From)
	if err != nil {
		return ExitResult{}, err
	}
	if balance.Lt(value) {
		return ExitResult{}, ErrInsufficientFungibleBalance
	}

	if err := v.fungible.Burn(ctx, req.From, value); err != nil {
		return ExitResult{}, err
	}

	if err := v.registry.DecrementDeposits(ctx, req.AssetID, value); err != nil {
		return ExitResult{}, compensate(err, func() error {
			return v.fungible.Mint(ctx, req.From, value)
		})
	}

	if err := v.receipts.Burn(ctx, req.From, req.ReceiptID); err != nil {
		return ExitResult{}, compensate(err,
			func() error { return v.registry.IncrementDeposits(ctx, req.AssetID, value) },
			func() error { return v.fungible.Mint(ctx, req.From, value) },
		)
	}

	v.emit(ctx, event.Event{
		Type:      event.TypeRedemption,
		AssetID:   req.AssetID,
		Actor:     req.Actor,
		Holder:    req.From,
		Value:     value,
		ReceiptID: req.ReceiptID,
	})

	v.logger.InfoContext(ctx, "redemption recorded",
		"asset_id", req.AssetID,
		"holder", req.From,
		"value", value.Dec(),
		"receipt_id", req.ReceiptID,
	)

	return ExitResult{Burned: value}, nil
}

// PartialExitRequest describes a partial redemption: burn part of a receipt's
// backing and reduce its recorded value, keeping the receipt alive.
type PartialExitRequest struct {
	AssetID string
	// Actor is the address performing the operation; must hold the issuer role.
	Actor string
	// From is the holder whose claim tokens are burned.
	From string
	// ReceiptID identifies the receipt to reduce.
	ReceiptID string
	// Amount is the claim-token amount to burn. It must be positive and
	// strictly below the receipt's recorded value; redeeming the full value
	// goes through Exit.
	Amount *uint256.Int
}

// PartialExitResult reports the outcome of a successful partial redemption.
type PartialExitResult struct {
	// Burned is the claim-token amount destroyed.
	Burned *uint256.Int
	// Remaining is the receipt's recorded value after the reduction.
	Remaining *uint256.Int
}

// PartialExit redeems part of a receipt's backing.
//
// Unlike Exit, the amount is caller-supplied, but it can never destroy the
// receipt: reductions must leave a positive recorded value, so the
// value-conservation link between the receipt and the burned tokens holds at
// every step.
func (v *Vault) PartialExit(ctx context.Context, req PartialExitRequest) (PartialExitResult, error) {
	ctx, span := v.tracer.Start(ctx, "vault.partial_exit", trace.WithAttributes(
		attribute.String("asset.id", req.AssetID),
		attribute.String("receipt.id", req.ReceiptID),
	))
	defer span.End()

	if req.From == "" {
		return PartialExitResult{}, ErrEmptyHolder
	}
	if req.Amount == nil || req.Amount.IsZero() {
		return PartialExitResult{}, ErrInvalidPartialAmount
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.authorize(ctx, req.AssetID, req.Actor); err != nil {
		return PartialExitResult{}, err
	}

	rec, err := v.resolveReceipt(ctx, req.AssetID, req.From, req.ReceiptID)
	if err != nil {
		return PartialExitResult{}, err
	}
	if !req.Amount.Lt(rec.RecordedValue) {
		return PartialExitResult{}, ErrInvalidPartialAmount
	}

	amount := new(uint256.Int).Set(req.Amount)

	balance, err := v.fungible.BalanceOf(ctx, req.From)
	if err != nil {
		return PartialExitResult{}, err
	}
	if balance.Lt(amount) {
		return PartialExitResult{}, ErrInsufficientFungibleBalance
	}

	if err := v.fungible.Burn(ctx, req.From, amount); err != nil {
		return PartialExitResult{}, err
	}

	if err := v.registry.DecrementDeposits(ctx, req.AssetID, amount); err != nil {
		return PartialExitResult{}, compensate(err, func() error {
			return v.fungible.Mint(ctx, req.From, amount)
		})
	}

	if err := v.receipts.ReduceValue(ctx, req.ReceiptID, amount); err != nil {
		return PartialExitResult{}, compensate(err,
			func() error { return v.registry.IncrementDeposits(ctx, req.AssetID, amount) },
			func() error { return v.fungible.Mint(ctx, req.From, amount) },
		)
	}

	remaining := new(uint256.Int).Sub(rec.RecordedValue, amount)

	v.emit(ctx, event.Event{
		Type:      event.TypePartialRedemption,
		AssetID:   req.AssetID,
		Actor:     req.Actor,
		Holder:    req.From,
		Value:     amount,
		ReceiptID: req.ReceiptID,
	})

	v.logger.InfoContext(ctx, "partial redemption recorded",
		"asset_id", req.AssetID,
		"holder", req.From,
		"value", amount.Dec(),
		"remaining", remaining.Dec(),
		"receipt_id", req.ReceiptID,
	)

	return PartialExitResult{Burned: amount, Remaining: remaining}, nil
}

// resolveReceipt loads the receipt and checks it belongs to the asset and
// holder before any mutation.
func (v *Vault) resolveReceipt(ctx context.Context, assetID, from, receiptID string) (receipt.Receipt, error) {
	rec, err := v.receipts.DataOf(ctx, receiptID)
	if err != nil {
		return receipt.Receipt{}, err
	}
	if rec.AssetID != assetID {
		return receipt.Receipt{}, ErrReceiptAssetMismatch
	}
	if rec.Owner != from {
		return receipt.Receipt{}, storage.ErrReceiptNotOwned
	}
	return rec, nil
}
