package vault

import (
	"context"
	"errors"

	apperrors "github.com/openclaim/vault/internal/platform/errors"
	"github.com/openclaim/vault/vault/asset"
)

var (
	// ErrUnauthorizedIssuer indicates the actor does not hold the asset's issuer role.
	ErrUnauthorizedIssuer = apperrors.New(apperrors.CodeUnauthorizedIssuer, "actor is not the asset issuer")
	// ErrAssetDisabled indicates the asset rejects vault operations.
	ErrAssetDisabled = apperrors.New(apperrors.CodeAssetDisabled, "asset is disabled")
	// ErrDepositLimitExceeded indicates the put would push deposits past the cap.
	ErrDepositLimitExceeded = apperrors.New(apperrors.CodeDepositLimitExceeded, "asset deposit limit exceeded")
	// ErrInvalidValue indicates a missing or zero operation value.
	ErrInvalidValue = apperrors.New(apperrors.CodeInvalidValue, "value must be positive")
	// ErrEmptyHolder indicates a missing holder address.
	ErrEmptyHolder = apperrors.New(apperrors.CodeInvalidHolder, "holder address is required")
	// ErrReceiptAssetMismatch indicates the receipt belongs to a different asset.
	ErrReceiptAssetMismatch = apperrors.New(apperrors.CodeReceiptAssetMismatch, "receipt belongs to a different asset")
	// ErrInsufficientFungibleBalance indicates the holder cannot cover the burn.
	ErrInsufficientFungibleBalance = apperrors.New(apperrors.CodeInsufficientFungibleBalance, "holder balance below redemption amount")
	// ErrInvalidPartialAmount indicates a partial redemption amount that is zero
	// or not strictly below the receipt's recorded value.
	ErrInvalidPartialAmount = apperrors.New(apperrors.CodeInvalidPartialAmount, "partial amount must be positive and below recorded value")
)

// authorize resolves the asset and checks the actor may operate on it.
// It runs before any ledger mutation: an unauthorized caller observes no
// state change of any kind.
func (v *Vault) authorize(ctx context.Context, assetID, actor string) (asset.Definition, error) {
	def, err := v.registry.AssetData(ctx, assetID)
	if err != nil {
		return asset.Definition{}, err
	}
	if !def.IsIssuer(actor) {
		return asset.Definition{}, apperrors.WithMetadata(apperrors.CodeUnauthorizedIssuer, "actor is not the asset issuer", map[string]string{
			"asset_id": assetID,
			"actor":    actor,
		})
	}
	if !def.IsActive() {
		return asset.Definition{}, apperrors.WithMetadata(apperrors.CodeAssetDisabled, "asset is disabled", map[string]string{
			"asset_id": assetID,
		})
	}
	return def, nil
}

// compensate undoes already-applied mutation steps after a later step failed.
//
// Steps run in the order given, which callers arrange as the reverse of the
// apply order. When every compensation succeeds the original error is
// returned unchanged; when any fails, the ledgers are known to have diverged
// and the joined errors surface as a partial mutation failure.
func compensate(original error, steps ...func() error) error {
	var failed []error
	for _, step := range steps {
		if err := step(); err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) == 0 {
		return original
	}
	joined := errors.Join(append([]error{original}, failed...)...)
	return apperrors.Wrap(apperrors.CodePartialMutationFailure, "ledgers diverged during rollback", joined)
}
