package vault

import (
	"context"

	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/openclaim/vault/vault/asset"
	"github.com/openclaim/vault/vault/event"
	"github.com/openclaim/vault/vault/receipt"
)

// PutRequest describes a deposit: mint claim tokens to a holder and bind a
// receipt recording the deposited value.
type PutRequest struct {
	// AssetID identifies the asset being deposited.
	AssetID string
	// Actor is the address performing the operation; must hold the issuer role.
	Actor string
	// To is the holder credited with claim tokens and the receipt.
	To string
	// Value is the gross deposited value. Claim tokens are minted one-to-one
	// against it and it becomes the receipt's recorded value.
	Value *uint256.Int
	// URI is optional receipt metadata, typically a document pointer.
	URI string
}

// PutResult reports the outcome of a successful deposit.
type PutResult struct {
	// ReceiptID identifies the minted receipt.
	ReceiptID string
	// Minted is the claim-token amount credited to the holder.
	Minted *uint256.Int
	// NetValue and FeeAmount split the gross value by the asset's deposit fee
	// rate. Informational; the full gross value is minted and recorded.
	NetValue  *uint256.Int
	FeeAmount *uint256.Int
}

// Put deposits value for a holder: claim tokens are minted one-to-one and a
// receipt records the deposit.
//
// Mutation order is deposit total, fungible mint, receipt mint; the receipt
// runs last because a minted receipt ID cannot be restored once observed.
// Earlier steps are compensated in reverse when a later one fails.
func (v *Vault) Put(ctx context.Context, req PutRequest) (PutResult, error) {
	ctx, span := v.tracer.Start(ctx, "vault.put", trace.WithAttributes(
		attribute.String("asset.id", req.AssetID),
	))
	defer span.End()

	if req.Value == nil || req.Value.IsZero() {
		return PutResult{}, ErrInvalidValue
	}
	if req.To == "" {
		return PutResult{}, ErrEmptyHolder
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	def, err := v.authorize(ctx, req.AssetID, req.Actor)
	if err != nil {
		return PutResult{}, err
	}

	reached, err := v.registry.DepositLimitReached(ctx, req.AssetID, req.Value)
	if err != nil {
		return PutResult{}, err
	}
	if reached {
		return PutResult{}, ErrDepositLimitExceeded
	}

	net, fee, err := asset.SplitFee(req.Value, def.DepositFeeBps)
	if err != nil {
		return PutResult{}, err
	}

	value := new(uint256.Int).Set(req.Value)

	if err := v.registry.IncrementDeposits(ctx, req.AssetID, value); err != nil {
		return PutResult{}, err
	}

	if err := v.fungible.Mint(ctx, req.To, value); err != nil {
		return PutResult{}, compensate(err, func() error {
			return v.registry.DecrementDeposits(ctx, req.AssetID, value)
		})
	}

	receiptID, err := v.receipts.Mint(ctx, req.To, receipt.Metadata{
		AssetID:   req.AssetID,
		Value:     value,
		NetValue:  net,
		FeeAmount: fee,
		URI:       req.URI,
	})
	if err != nil {
		return PutResult{}, compensate(err,
			func() error { return v.fungible.Burn(ctx, req.To, value) },
			func() error { return v.registry.DecrementDeposits(ctx, req.AssetID, value) },
		)
	}

	v.emit(ctx, event.Event{
		Type:      event.TypeIssuance,
		AssetID:   req.AssetID,
		Actor:     req.Actor,
		Holder:    req.To,
		Value:     value,
		ReceiptID: receiptID,
	})

	v.logger.InfoContext(ctx, "deposit recorded",
		"asset_id", req.AssetID,
		"holder", req.To,
		"value", value.Dec(),
		"receipt_id", receiptID,
	)

	return PutResult{
		ReceiptID: receiptID,
		Minted:    value,
		NetValue:  net,
		FeeAmount: fee,
	}, nil
}
