package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	apperrors "github.com/openclaim/vault/internal/platform/errors"
	"github.com/openclaim/vault/vault/receipt"
	"github.com/openclaim/vault/vault/storage"
	"github.com/openclaim/vault/vault/storage/memory"
)

var errInjected = errors.New("injected failure")

// failingReceipts fails selected receipt ledger operations.
type failingReceipts struct {
	storage.ReceiptLedger
	failMint   bool
	failBurn   bool
	failReduce bool
}

func (f *failingReceipts) Mint(ctx context.Context, to string, meta receipt.Metadata) (string, error) {
	if f.failMint {
		return "", errInjected
	}
	return f.ReceiptLedger.Mint(ctx, to, meta)
}

func (f *failingReceipts) Burn(ctx context.Context, from string, receiptID string) error {
	if f.failBurn {
		return errInjected
	}
	return f.ReceiptLedger.Burn(ctx, from, receiptID)
}

func (f *failingReceipts) ReduceValue(ctx context.Context, receiptID string, amount *uint256.Int) error {
	if f.failReduce {
		return errInjected
	}
	return f.ReceiptLedger.ReduceValue(ctx, receiptID, amount)
}

// failingRegistry fails selected registry operations.
type failingRegistry struct {
	storage.AssetRegistry
	failDecrement bool
	failIncrement bool
}

func (f *failingRegistry) DecrementDeposits(ctx context.Context, assetID string, amount *uint256.Int) error {
	if f.failDecrement {
		return errInjected
	}
	return f.AssetRegistry.DecrementDeposits(ctx, assetID, amount)
}

func (f *failingRegistry) IncrementDeposits(ctx context.Context, assetID string, amount *uint256.Int) error {
	if f.failIncrement {
		return errInjected
	}
	return f.AssetRegistry.IncrementDeposits(ctx, assetID, amount)
}

func newFailingVault(t *testing.T, receipts *failingReceipts, registry *failingRegistry) (*Vault, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	receipts.ReceiptLedger = store.Receipts
	if registry == nil {
		registry = &failingRegistry{}
	}
	registry.AssetRegistry = store.Registry
	v, err := New(store.Fungible, receipts, registry)
	if err != nil {
		t.Fatalf("new vault: %v", err)
	}
	return v, store
}

func TestPutRollsBackOnReceiptMintFailure(t *testing.T) {
	ctx := context.Background()
	receipts := &failingReceipts{failMint: true}
	v, store := newFailingVault(t, receipts, nil)
	registerAsset(t, store, enabledAsset("gold"))

	_, err := v.Put(ctx, PutRequest{
		AssetID: "gold",
		Actor:   testIssuer,
		To:      testHolder,
		Value:   uint256.NewInt(10000),
	})
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected failure, got %v", err)
	}

	// The earlier fungible mint and deposit increment must be undone.
	supply, err := store.Fungible.TotalSupply(ctx)
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if !supply.IsZero() {
		t.Fatalf("expected zero supply after rollback, got %s", supply.Dec())
	}
	total, err := store.Registry.DepositTotal(ctx, "gold")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if !total.IsZero() {
		t.Fatalf("expected zero deposit total after rollback, got %s", total.Dec())
	}
}

func TestExitRollsBackOnReceiptBurnFailure(t *testing.T) {
	ctx := context.Background()
	receipts := &failingReceipts{}
	v, store := newFailingVault(t, receipts, nil)
	registerAsset(t, store, enabledAsset("gold"))

	res, err := v.Put(ctx, PutRequest{
		AssetID: "gold",
		Actor:   testIssuer,
		To:      testHolder,
		Value:   uint256.NewInt(10000),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	receipts.failBurn = true
	_, err = v.Exit(ctx, ExitRequest{
		AssetID:   "gold",
		Actor:     testIssuer,
		From:      testHolder,
		ReceiptID: res.ReceiptID,
	})
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected failure, got %v", err)
	}

	// The burn and decrement must be compensated.
	balance, err := store.Fungible.BalanceOf(ctx, testHolder)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Eq(uint256.NewInt(10000)) {
		t.Fatalf("expected restored balance 10000, got %s", balance.Dec())
	}
	total, err := store.Registry.DepositTotal(ctx, "gold")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if !total.Eq(uint256.NewInt(10000)) {
		t.Fatalf("expected restored deposit total 10000, got %s", total.Dec())
	}
	if _, err := store.Receipts.DataOf(ctx, res.ReceiptID); err != nil {
		t.Fatalf("expected receipt to survive: %v", err)
	}
}

func TestExitRollsBackOnDecrementFailure(t *testing.T) {
	ctx := context.Background()
	receipts := &failingReceipts{}
	registry := &failingRegistry{}
	v, store := newFailingVault(t, receipts, registry)
	registerAsset(t, store, enabledAsset("gold"))

	res, err := v.Put(ctx, PutRequest{
		AssetID: "gold",
		Actor:   testIssuer,
		To:      testHolder,
		Value:   uint256.NewInt(10000),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	registry.failDecrement = true
	_, err = v.Exit(ctx, ExitRequest{
		AssetID:   "gold",
		Actor:     testIssuer,
		From:      testHolder,
		ReceiptID: res.ReceiptID,
	})
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected failure, got %v", err)
	}

	balance, err := store.Fungible.BalanceOf(ctx, testHolder)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Eq(uint256.NewInt(10000)) {
		t.Fatalf("expected restored balance 10000, got %s", balance.Dec())
	}
}

func TestPartialExitRollsBackOnReduceFailure(t *testing.T) {
	ctx := context.Background()
	receipts := &failingReceipts{}
	v, store := newFailingVault(t, receipts, nil)
	registerAsset(t, store, enabledAsset("gold"))

	res, err := v.Put(ctx, PutRequest{
		AssetID: "gold",
		Actor:   testIssuer,
		To:      testHolder,
		Value:   uint256.NewInt(10000),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	receipts.failReduce = true
	_, err = v.PartialExit(ctx, PartialExitRequest{
		AssetID:   "gold",
		Actor:     testIssuer,
		From:      testHolder,
		ReceiptID: res.ReceiptID,
		Amount:    uint256.NewInt(4000),
	})
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected failure, got %v", err)
	}

	balance, err := store.Fungible.BalanceOf(ctx, testHolder)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Eq(uint256.NewInt(10000)) {
		t.Fatalf("expected restored balance 10000, got %s", balance.Dec())
	}
	rec, err := store.Receipts.DataOf(ctx, res.ReceiptID)
	if err != nil {
		t.Fatalf("data of: %v", err)
	}
	if !rec.RecordedValue.Eq(uint256.NewInt(10000)) {
		t.Fatalf("expected recorded value 10000, got %s", rec.RecordedValue.Dec())
	}
}

func TestExitReportsPartialMutationFailure(t *testing.T) {
	ctx := context.Background()
	receipts := &failingReceipts{}
	registry := &failingRegistry{}
	v, store := newFailingVault(t, receipts, registry)
	registerAsset(t, store, enabledAsset("gold"))

	res, err := v.Put(ctx, PutRequest{
		AssetID: "gold",
		Actor:   testIssuer,
		To:      testHolder,
		Value:   uint256.NewInt(10000),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	// Both the receipt burn and its compensating increment fail, so the
	// ledgers cannot be reconciled.
	receipts.failBurn = true
	registry.failIncrement = true
	_, err = v.Exit(ctx, ExitRequest{
		AssetID:   "gold",
		Actor:     testIssuer,
		From:      testHolder,
		ReceiptID: res.ReceiptID,
	})
	if err == nil {
		t.Fatal("expected partial mutation failure")
	}
	if !errors.Is(err, apperrors.New(apperrors.CodePartialMutationFailure, "")) {
		t.Fatalf("expected partial mutation failure code, got %v", err)
	}
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected cause in chain, got %v", err)
	}
}
