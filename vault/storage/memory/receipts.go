package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/openclaim/vault/vault/receipt"
	"github.com/openclaim/vault/vault/storage"
)

// ReceiptLedger is an in-memory deposit receipt ledger.
type ReceiptLedger struct {
	mu       sync.Mutex
	receipts map[string]receipt.Receipt
	idgen    func() (string, error)
	clock    func() time.Time
}

// Mint creates a receipt for to, binding the recorded value from meta.
func (l *ReceiptLedger) Mint(_ context.Context, to string, meta receipt.Metadata) (string, error) {
	if to == "" || meta.AssetID == "" {
		return "", storage.ErrInvalidAmount
	}
	if meta.Value == nil || meta.Value.IsZero() {
		return "", storage.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	receiptID, err := l.idgen()
	if err != nil {
		return "", err
	}

	rec := receipt.Receipt{
		ID:            receiptID,
		AssetID:       meta.AssetID,
		Owner:         to,
		RecordedValue: meta.Value,
		NetValue:      meta.NetValue,
		FeeAmount:     meta.FeeAmount,
		URI:           meta.URI,
		MintedAt:      l.clock().UTC(),
	}
	l.receipts[receiptID] = rec.Clone()
	return receiptID, nil
}

// Burn destroys the receipt held by from. The ID is never reused.
func (l *ReceiptLedger) Burn(_ context.Context, from string, receiptID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.receipts[receiptID]
	if !ok {
		return storage.ErrReceiptNotFound
	}
	if rec.Owner != from {
		return storage.ErrReceiptNotOwned
	}
	delete(l.receipts, receiptID)
	return nil
}

// ReduceValue lowers the receipt's recorded value by amount.
// The reduction must leave a positive recorded value behind; destroying a
// receipt goes through Burn.
func (l *ReceiptLedger) ReduceValue(_ context.Context, receiptID string, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return storage.ErrInvalidReduction
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.receipts[receiptID]
	if !ok {
		return storage.ErrReceiptNotFound
	}
	if !amount.Lt(rec.RecordedValue) {
		return storage.ErrInvalidReduction
	}
	rec = rec.Clone()
	rec.RecordedValue.Sub(rec.RecordedValue, amount)
	l.receipts[receiptID] = rec
	return nil
}

// OwnerOf returns the receipt's current holder.
func (l *ReceiptLedger) OwnerOf(_ context.Context, receiptID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.receipts[receiptID]
	if !ok {
		return "", storage.ErrReceiptNotFound
	}
	return rec.Owner, nil
}

// DataOf returns a copy of the receipt record.
func (l *ReceiptLedger) DataOf(_ context.Context, receiptID string) (receipt.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.receipts[receiptID]
	if !ok {
		return receipt.Receipt{}, storage.ErrReceiptNotFound
	}
	return rec.Clone(), nil
}

// ListByAsset returns all live receipts for the asset, oldest first.
func (l *ReceiptLedger) ListByAsset(_ context.Context, assetID string) ([]receipt.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []receipt.Receipt
	for _, rec := range l.receipts {
		if rec.AssetID == assetID {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MintedAt.Equal(out[j].MintedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].MintedAt.Before(out[j].MintedAt)
	})
	return out, nil
}
