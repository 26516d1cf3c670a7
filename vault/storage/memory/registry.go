package memory

import (
	"context"
	"sync"

	"github.com/holiman/uint256"

	"github.com/openclaim/vault/vault/asset"
	"github.com/openclaim/vault/vault/storage"
)

// Registry is an in-memory asset registry with per-asset deposit totals.
type Registry struct {
	mu     sync.Mutex
	assets map[string]asset.Definition
	totals map[string]*uint256.Int
	limits map[string]*uint256.Int
}

// AssetData returns a read-only snapshot of the asset's definition.
func (r *Registry) AssetData(_ context.Context, assetID string) (asset.Definition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.assets[assetID]
	if !ok {
		return asset.Definition{}, storage.ErrAssetNotFound
	}
	return def, nil
}

// DepositLimitReached reports whether total + amount would exceed the limit.
// Assets without a configured limit never report reached.
func (r *Registry) DepositLimitReached(_ context.Context, assetID string, amount *uint256.Int) (bool, error) {
	if amount == nil {
		return false, storage.ErrInvalidAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assets[assetID]; !ok {
		return false, storage.ErrAssetNotFound
	}
	limit, ok := r.limits[assetID]
	if !ok {
		return false, nil
	}

	next := new(uint256.Int)
	if _, overflow := next.AddOverflow(r.total(assetID), amount); overflow {
		return true, nil
	}
	return next.Gt(limit), nil
}

// IncrementDeposits grows the asset's deposit total by amount.
func (r *Registry) IncrementDeposits(_ context.Context, assetID string, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return storage.ErrInvalidAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assets[assetID]; !ok {
		return storage.ErrAssetNotFound
	}
	total := r.total(assetID)
	if _, overflow := total.AddOverflow(total, amount); overflow {
		return storage.ErrInvalidAmount
	}
	r.totals[assetID] = total
	return nil
}

// DecrementDeposits shrinks the asset's deposit total by amount.
func (r *Registry) DecrementDeposits(_ context.Context, assetID string, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return storage.ErrInvalidAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assets[assetID]; !ok {
		return storage.ErrAssetNotFound
	}
	total := r.total(assetID)
	if total.Lt(amount) {
		return storage.ErrDepositUnderflow
	}
	total.Sub(total, amount)
	r.totals[assetID] = total
	return nil
}

// DepositTotal returns the running sum of recorded values of live receipts.
func (r *Registry) DepositTotal(_ context.Context, assetID string) (*uint256.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[assetID]; !ok {
		return nil, storage.ErrAssetNotFound
	}
	return r.total(assetID), nil
}

// PutAsset registers a new asset after validating its definition.
func (r *Registry) PutAsset(_ context.Context, def asset.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assets[def.ID]; ok {
		return storage.ErrAssetAlreadyExists
	}
	r.assets[def.ID] = def
	return nil
}

// SetAssetStatus enables or disables an existing asset.
func (r *Registry) SetAssetStatus(_ context.Context, assetID string, status asset.Status) error {
	if status != asset.StatusEnabled && status != asset.StatusDisabled {
		return asset.ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.assets[assetID]
	if !ok {
		return storage.ErrAssetNotFound
	}
	def.Status = status
	r.assets[assetID] = def
	return nil
}

// SetDepositLimit caps the asset's deposit total. A nil limit removes the cap.
func (r *Registry) SetDepositLimit(_ context.Context, assetID string, limit *uint256.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assets[assetID]; !ok {
		return storage.ErrAssetNotFound
	}
	if limit == nil {
		delete(r.limits, assetID)
		return nil
	}
	r.limits[assetID] = new(uint256.Int).Set(limit)
	return nil
}

// total returns a copy of the asset's deposit total. Callers hold the lock.
func (r *Registry) total(assetID string) *uint256.Int {
	if total, ok := r.totals[assetID]; ok {
		return new(uint256.Int).Set(total)
	}
	return new(uint256.Int)
}
